// Package editor is the in-memory builder for a course's ordered content
// list. A small step-wise wizard guarantees every item reaching the list is
// structurally valid for its type before the single bulk submission.
package editor

import (
	"github.com/google/uuid"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
)

// Step is the wizard's current state for the in-progress item.
type Step int

const (
	// StepClosed means no item is being edited.
	StepClosed Step = iota
	// StepChoosingKind offers lesson vs task for a new item.
	StepChoosingKind
	// StepChoosingTaskType offers the three task shapes; only reachable
	// when the chosen kind is task.
	StepChoosingTaskType
	// StepEditing has a live draft of the resolved shape.
	StepEditing
)

// Editor holds the ordered item list and the wizard state.
type Editor struct {
	step  Step
	draft *models.ContentItem
	items []models.ContentItem
}

// New starts an editor over a copy of existing items (empty for a new
// course).
func New(items []models.ContentItem) *Editor {
	e := &Editor{items: make([]models.ContentItem, len(items))}
	copy(e.items, items)
	return e
}

func (e *Editor) Step() Step { return e.step }

// Items returns the current ordered list.
func (e *Editor) Items() []models.ContentItem { return e.items }

// Draft returns the live draft, nil outside StepEditing. Text fields are
// edited directly on the draft; structural changes go through the option
// methods.
func (e *Editor) Draft() *models.ContentItem { return e.draft }

// Open enters the wizard for a new item.
func (e *Editor) Open() {
	e.draft = nil
	e.step = StepChoosingKind
}

// Edit loads a copy of an existing list entry straight into StepEditing,
// bypassing the selection steps. Returns false when the key matches nothing.
func (e *Editor) Edit(key string) bool {
	for _, it := range e.items {
		if it.Key() == key {
			draft := it
			draft.Options = append([]models.Option(nil), it.Options...)
			e.draft = &draft
			e.step = StepEditing
			return true
		}
	}
	return false
}

// ChooseKind resolves the item kind. A lesson draft goes straight to
// editing; a task needs its type chosen first.
func (e *Editor) ChooseKind(kind models.ItemType) {
	if e.step != StepChoosingKind {
		return
	}
	if kind == models.ItemLesson {
		e.draft = &models.ContentItem{Type: models.ItemLesson}
		e.step = StepEditing
		return
	}
	e.step = StepChoosingTaskType
}

// ChooseTaskType seeds a task draft of the chosen shape.
func (e *Editor) ChooseTaskType(tt models.TaskType) {
	if e.step != StepChoosingTaskType {
		return
	}
	draft := &models.ContentItem{Type: models.ItemTask, TaskType: tt}
	if tt.HasOptions() {
		draft.Options = []models.Option{}
	}
	e.draft = draft
	e.step = StepEditing
}

// Back returns from task type selection to kind selection.
func (e *Editor) Back() {
	if e.step == StepChoosingTaskType {
		e.step = StepChoosingKind
	}
}

// Cancel discards the draft at any step without touching the list.
func (e *Editor) Cancel() {
	e.draft = nil
	e.step = StepClosed
}

// Save validates the draft and upserts it into the list: append with a fresh
// local identifier when the draft is new, replace in place when it carries
// one. Returns a validation error and leaves all state unchanged when the
// title is empty.
func (e *Editor) Save() error {
	if e.step != StepEditing || e.draft == nil {
		return nil
	}
	if e.draft.Title == "" {
		return apperr.New(apperr.Validation, "a title is required")
	}

	item := *e.draft
	if key := item.Key(); key != "" {
		for i := range e.items {
			if e.items[i].Key() == key {
				e.items[i] = item
				e.draft = nil
				e.step = StepClosed
				return nil
			}
		}
	}
	item.LocalID = uuid.NewString()
	e.items = append(e.items, item)
	e.draft = nil
	e.step = StepClosed
	return nil
}

// Delete removes an item by identity, preserving the order of the rest. Not
// undoable.
func (e *Editor) Delete(key string) {
	for i := range e.items {
		if e.items[i].Key() == key {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return
		}
	}
}

// AddOption appends an empty option to a choice draft.
func (e *Editor) AddOption() {
	if e.draft == nil || !e.draft.TaskType.HasOptions() {
		return
	}
	e.draft.Options = append(e.draft.Options, models.Option{})
}

// RemoveOption deletes an option by position. Not undoable.
func (e *Editor) RemoveOption(i int) {
	if e.draft == nil || i < 0 || i >= len(e.draft.Options) {
		return
	}
	e.draft.Options = append(e.draft.Options[:i], e.draft.Options[i+1:]...)
}

// ToggleCorrect flips correctness on option i. Single choice has radio
// semantics: marking one clears all others. Multiple choice flips only
// option i.
func (e *Editor) ToggleCorrect(i int) {
	if e.draft == nil || i < 0 || i >= len(e.draft.Options) {
		return
	}
	switch e.draft.TaskType {
	case models.TaskSingleChoice:
		for j := range e.draft.Options {
			e.draft.Options[j].IsCorrect = j == i
		}
	case models.TaskMultipleChoice:
		e.draft.Options[i].IsCorrect = !e.draft.Options[i].IsCorrect
	}
}

// Build returns the list ready for submission, with local identifiers
// stripped so the backend assigns authoritative IDs. An empty list is a
// local validation error; no network call should follow.
func (e *Editor) Build() ([]models.ContentItem, error) {
	if len(e.items) == 0 {
		return nil, apperr.New(apperr.Validation, "a course must have at least one lesson or task")
	}
	out := make([]models.ContentItem, len(e.items))
	for i, it := range e.items {
		it.LocalID = ""
		it.ID = 0
		out[i] = it
	}
	return out, nil
}
