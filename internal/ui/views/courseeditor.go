package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skilltracker/skt/internal/api"
	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/editor"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/ui/keys"
	"github.com/skilltracker/skt/internal/ui/styles"
)

// CourseEditorView builds a course: title, description and the ordered
// content list driven by the item wizard
type CourseEditorView struct {
	ctx    Context
	styles *styles.Styles
	keys   keys.KeyMap
	ed     *editor.Editor

	title textinput.Model
	desc  textarea.Model

	focusIdx   int // 0=title, 1=desc, 2=items
	itemCursor int

	// wizard state
	wizardCursor int
	itemTitle    textinput.Model
	itemContent  textarea.Model
	itemQuestion textarea.Model
	itemFocusIdx int
	optCursor    int
	optInput     textinput.Model
	editingOpt   bool

	busy   bool
	errMsg string

	width  int
	height int
}

type courseSavedMsg struct{ err error }

func NewCourseEditorView(ctx Context) *CourseEditorView {
	title := textinput.New()
	title.Placeholder = "Course title"
	title.CharLimit = 200
	title.Focus()

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	itemTitle := textinput.New()
	itemTitle.Placeholder = "Item title"
	itemTitle.CharLimit = 200

	itemContent := textarea.New()
	itemContent.Placeholder = "Lesson content (markdown)"
	itemContent.CharLimit = 10000
	itemContent.SetWidth(50)
	itemContent.SetHeight(6)
	itemContent.ShowLineNumbers = false

	itemQuestion := textarea.New()
	itemQuestion.Placeholder = "Question"
	itemQuestion.CharLimit = 2000
	itemQuestion.SetWidth(50)
	itemQuestion.SetHeight(3)
	itemQuestion.ShowLineNumbers = false

	optInput := textinput.New()
	optInput.Placeholder = "Option text"
	optInput.CharLimit = 300

	return &CourseEditorView{
		ctx:          ctx,
		styles:       styles.NewStyles(),
		keys:         keys.DefaultKeyMap(),
		ed:           editor.New(nil),
		title:        title,
		desc:         desc,
		itemTitle:    itemTitle,
		itemContent:  itemContent,
		itemQuestion: itemQuestion,
		optInput:     optInput,
	}
}

func (v *CourseEditorView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *CourseEditorView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inputWidth := styles.Clamp(styles.ContentWidth(v.width)-10, 20, 50)
		v.desc.SetWidth(inputWidth)
		v.itemContent.SetWidth(inputWidth)
		v.itemQuestion.SetWidth(inputWidth)
		return v, nil

	case courseSavedMsg:
		v.busy = false
		if msg.err != nil {
			// the item list is preserved so the user can retry
			v.errMsg = apperr.Message(msg.err)
			return v, nil
		}
		return v, func() tea.Msg { return BackToDashboard{} }

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		switch v.ed.Step() {
		case editor.StepChoosingKind:
			return v.updateChoosingKind(msg)
		case editor.StepChoosingTaskType:
			return v.updateChoosingTaskType(msg)
		case editor.StepEditing:
			return v.updateEditingItem(msg)
		}
		return v.updateForm(msg)
	}

	return v, nil
}

func (v *CourseEditorView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToDashboard{} }

	case msg.String() == "ctrl+s":
		return v, v.submitCourse()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFormFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFormFocus()
		return v, nil

	case msg.String() == "ctrl+a":
		v.errMsg = ""
		v.ed.Open()
		v.wizardCursor = 0
		return v, nil
	}

	if v.focusIdx == 2 {
		items := v.ed.Items()
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.itemCursor > 0 {
				v.itemCursor--
			}
			return v, nil
		case key.Matches(msg, v.keys.Down):
			if v.itemCursor < len(items)-1 {
				v.itemCursor++
			}
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.errMsg = ""
			v.ed.Open()
			v.wizardCursor = 0
			return v, nil
		case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Edit):
			if v.itemCursor < len(items) {
				if v.ed.Edit(items[v.itemCursor].Key()) {
					v.errMsg = ""
					v.seedItemInputs()
					return v, textinput.Blink
				}
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if v.itemCursor < len(items) {
				v.ed.Delete(items[v.itemCursor].Key())
				if n := len(v.ed.Items()); v.itemCursor >= n && n > 0 {
					v.itemCursor = n - 1
				}
			}
			return v, nil
		}
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.title, cmd = v.title.Update(msg)
	case 1:
		v.desc, cmd = v.desc.Update(msg)
	}
	return v, cmd
}

func (v *CourseEditorView) updateFormFocus() {
	v.title.Blur()
	v.desc.Blur()
	switch v.focusIdx {
	case 0:
		v.title.Focus()
	case 1:
		v.desc.Focus()
	}
}

func (v *CourseEditorView) updateChoosingKind(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.ed.Cancel()
		return v, nil
	case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.Down):
		v.wizardCursor = (v.wizardCursor + 1) % 2
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		if v.wizardCursor == 0 {
			v.ed.ChooseKind(models.ItemLesson)
			v.seedItemInputs()
			return v, textinput.Blink
		}
		v.ed.ChooseKind(models.ItemTask)
		v.wizardCursor = 0
		return v, nil
	}
	return v, nil
}

func (v *CourseEditorView) updateChoosingTaskType(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	taskTypes := []models.TaskType{models.TaskSingleChoice, models.TaskMultipleChoice, models.TaskLongAnswer}
	switch {
	case key.Matches(msg, v.keys.Back):
		v.ed.Back()
		v.wizardCursor = 0
		return v, nil
	case key.Matches(msg, v.keys.Up):
		if v.wizardCursor > 0 {
			v.wizardCursor--
		}
		return v, nil
	case key.Matches(msg, v.keys.Down):
		if v.wizardCursor < len(taskTypes)-1 {
			v.wizardCursor++
		}
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		v.ed.ChooseTaskType(taskTypes[v.wizardCursor])
		v.seedItemInputs()
		return v, textinput.Blink
	}
	return v, nil
}

func (v *CourseEditorView) updateEditingItem(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	draft := v.ed.Draft()
	if draft == nil {
		return v, nil
	}

	// inline option text editing has its own mode
	if v.editingOpt {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.editingOpt = false
			v.optInput.Blur()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.optCursor < len(draft.Options) {
				draft.Options[v.optCursor].Text = strings.TrimSpace(v.optInput.Value())
			}
			v.editingOpt = false
			v.optInput.Blur()
			return v, nil
		}
		var cmd tea.Cmd
		v.optInput, cmd = v.optInput.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.ed.Cancel()
		v.editingOpt = false
		return v, nil

	case msg.String() == "ctrl+s":
		v.syncDraft()
		savedKey := draft.Key()
		if err := v.ed.Save(); err != nil {
			v.errMsg = apperr.Message(err)
			return v, nil
		}
		v.errMsg = ""
		v.itemCursor = v.itemIndex(savedKey)
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.itemFocusIdx = (v.itemFocusIdx + 1) % v.itemFieldCount(draft)
		v.updateItemFocus()
		return v, nil

	case msg.String() == "shift+tab":
		n := v.itemFieldCount(draft)
		v.itemFocusIdx = (v.itemFocusIdx + n - 1) % n
		v.updateItemFocus()
		return v, nil
	}

	// options section
	if draft.TaskType.HasOptions() && v.itemFocusIdx == 2 {
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.optCursor > 0 {
				v.optCursor--
			}
			return v, nil
		case key.Matches(msg, v.keys.Down):
			if v.optCursor < len(draft.Options)-1 {
				v.optCursor++
			}
			return v, nil
		case msg.String() == " ":
			v.ed.ToggleCorrect(v.optCursor)
			return v, nil
		case msg.String() == "ctrl+o":
			v.ed.AddOption()
			v.optCursor = len(draft.Options) - 1
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			v.ed.RemoveOption(v.optCursor)
			if n := len(draft.Options); v.optCursor >= n && n > 0 {
				v.optCursor = n - 1
			}
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.optCursor < len(draft.Options) {
				v.editingOpt = true
				v.optInput.SetValue(draft.Options[v.optCursor].Text)
				v.optInput.Focus()
				return v, textinput.Blink
			}
			return v, nil
		}
		return v, nil
	}

	var cmd tea.Cmd
	switch v.itemFocusIdx {
	case 0:
		v.itemTitle, cmd = v.itemTitle.Update(msg)
	case 1:
		if draft.Type == models.ItemLesson {
			v.itemContent, cmd = v.itemContent.Update(msg)
		} else {
			v.itemQuestion, cmd = v.itemQuestion.Update(msg)
		}
	}
	v.syncDraft()
	return v, cmd
}

// itemIndex locates a saved item so the cursor follows it: an edited item
// stays in place, a new one lands at the end
func (v *CourseEditorView) itemIndex(key string) int {
	items := v.ed.Items()
	if key != "" {
		for i, it := range items {
			if it.Key() == key {
				return i
			}
		}
	}
	return len(items) - 1
}

// itemFieldCount is the number of focusable sections for the draft shape
func (v *CourseEditorView) itemFieldCount(draft *models.ContentItem) int {
	if draft.TaskType.HasOptions() {
		return 3 // title, question, options
	}
	return 2 // title, content/question
}

func (v *CourseEditorView) updateItemFocus() {
	v.itemTitle.Blur()
	v.itemContent.Blur()
	v.itemQuestion.Blur()
	draft := v.ed.Draft()
	switch v.itemFocusIdx {
	case 0:
		v.itemTitle.Focus()
	case 1:
		if draft != nil && draft.Type == models.ItemLesson {
			v.itemContent.Focus()
		} else {
			v.itemQuestion.Focus()
		}
	}
}

// seedItemInputs loads the draft into the item inputs when editing starts
func (v *CourseEditorView) seedItemInputs() {
	draft := v.ed.Draft()
	if draft == nil {
		return
	}
	v.itemFocusIdx = 0
	v.optCursor = 0
	v.editingOpt = false
	v.itemTitle.SetValue(draft.Title)
	v.itemContent.SetValue(draft.Content)
	v.itemQuestion.SetValue(draft.Question)
	v.updateItemFocus()
}

// syncDraft writes the text inputs back into the draft
func (v *CourseEditorView) syncDraft() {
	draft := v.ed.Draft()
	if draft == nil {
		return
	}
	draft.Title = strings.TrimSpace(v.itemTitle.Value())
	if draft.Type == models.ItemLesson {
		draft.Content = v.itemContent.Value()
	} else {
		draft.Question = strings.TrimSpace(v.itemQuestion.Value())
	}
}

// submitCourse validates locally and posts the whole course once. The item
// list survives a failed submission.
func (v *CourseEditorView) submitCourse() tea.Cmd {
	title := strings.TrimSpace(v.title.Value())
	desc := strings.TrimSpace(v.desc.Value())
	if title == "" || desc == "" {
		v.errMsg = "a title and a description are required"
		return nil
	}

	items, err := v.ed.Build()
	if err != nil {
		v.errMsg = apperr.Message(err)
		return nil
	}

	v.busy = true
	v.errMsg = ""
	payload := api.CoursePayload{Title: title, Description: desc, Items: items}
	return func() tea.Msg {
		_, err := v.ctx.API.CreateCourse(context.Background(), payload)
		return courseSavedMsg{err: err}
	}
}

func (v *CourseEditorView) View() string {
	switch v.ed.Step() {
	case editor.StepChoosingKind:
		return v.renderChooser("What would you like to add?", []string{"Lesson", "Task"})
	case editor.StepChoosingTaskType:
		return v.renderChooser("Select task type", []string{"Single choice", "Multiple choice", "Long answer"})
	case editor.StepEditing:
		return v.renderItemForm()
	}
	return v.renderForm()
}

func (v *CourseEditorView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := styles.Clamp(contentWidth-6, 20, 50)

	titleStyle := s.Input
	descStyle := s.Input
	if v.focusIdx == 0 {
		titleStyle = s.InputFocused
	}
	if v.focusIdx == 1 {
		descStyle = s.InputFocused
	}

	items := v.ed.Items()
	var itemLines []string
	if len(items) == 0 {
		itemLines = append(itemLines, s.TitleMuted.Render("  no content yet, press 'n' to add an item"))
	}
	for i, it := range items {
		kind := string(it.Type)
		if it.Type == models.ItemTask {
			kind = string(it.TaskType)
		}
		line := fmt.Sprintf("%s [%s]", it.Title, kind)
		if v.focusIdx == 2 && i == v.itemCursor {
			itemLines = append(itemLines, s.ListSelected.Render(line))
		} else {
			itemLines = append(itemLines, s.ListItem.Render(line))
		}
	}

	saveLabel := " Ctrl+S: save course "
	if v.busy {
		saveLabel = " Saving... "
	}

	parts := []string{
		s.Title.Render("New Course"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.title.View()),
		"",
		"Description:",
		descStyle.Render(v.desc.View()),
		"",
		v.renderItemsHeader(),
		lipgloss.JoinVertical(lipgloss.Left, itemLines...),
		"",
		s.ButtonPrimary.Render(saveLabel),
	}
	if v.errMsg != "" {
		parts = append(parts, "", s.ErrorText.Render(v.errMsg))
	}
	parts = append(parts, "",
		s.TitleMuted.Render("Tab: section • n: add item • ↵/e: edit • d: delete • Esc: back"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, parts...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *CourseEditorView) renderItemsHeader() string {
	label := "Content"
	if v.focusIdx == 2 {
		return v.styles.Title.Render(label)
	}
	return v.styles.TitleMuted.Render(label)
}

func (v *CourseEditorView) renderChooser(title string, options []string) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var lines []string
	for i, opt := range options {
		if i == v.wizardCursor {
			lines = append(lines, s.ListSelected.Render(opt))
		} else {
			lines = append(lines, s.ListItem.Render(opt))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		"",
		lipgloss.JoinVertical(lipgloss.Left, lines...),
		"",
		s.TitleMuted.Render("↑↓: select • ↵: choose • Esc: back"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Box.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *CourseEditorView) renderItemForm() string {
	s := v.styles
	draft := v.ed.Draft()
	if draft == nil {
		return ""
	}
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := styles.Clamp(contentWidth-6, 20, 50)

	heading := "Add lesson"
	if draft.Type == models.ItemTask {
		heading = "Add task (" + string(draft.TaskType) + ")"
	}
	if draft.Key() != "" {
		heading = strings.Replace(heading, "Add", "Edit", 1)
	}

	titleStyle := s.Input
	if v.itemFocusIdx == 0 {
		titleStyle = s.InputFocused
	}
	bodyStyle := s.Input
	if v.itemFocusIdx == 1 {
		bodyStyle = s.InputFocused
	}

	parts := []string{
		s.Title.Render(heading),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.itemTitle.View()),
		"",
	}

	if draft.Type == models.ItemLesson {
		parts = append(parts,
			"Content:",
			bodyStyle.Render(v.itemContent.View()),
		)
	} else {
		parts = append(parts,
			"Question:",
			bodyStyle.Render(v.itemQuestion.View()),
		)
	}

	if draft.TaskType.HasOptions() {
		parts = append(parts, "", v.renderOptions(draft))
	}

	if v.errMsg != "" {
		parts = append(parts, "", s.ErrorText.Render(v.errMsg))
	}

	hint := "Tab: section • Ctrl+S: save item • Esc: cancel"
	if draft.TaskType.HasOptions() {
		hint = "Tab: section • ↵: edit option • Space: correct • Ctrl+O: add option • d: remove • Ctrl+S: save item • Esc: cancel"
	}
	parts = append(parts, "", s.TitleMuted.Render(hint))

	form := lipgloss.JoinVertical(lipgloss.Left, parts...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *CourseEditorView) renderOptions(draft *models.ContentItem) string {
	s := v.styles

	label := "Options:"
	if v.itemFocusIdx == 2 {
		label = s.Title.Render(label)
	} else {
		label = s.TitleMuted.Render(label)
	}

	lines := []string{label}
	if len(draft.Options) == 0 {
		lines = append(lines, s.TitleMuted.Render("  none yet, Ctrl+O adds one"))
	}
	for i, opt := range draft.Options {
		mark := "[ ]"
		if opt.IsCorrect {
			mark = "[x]"
		}
		text := opt.Text
		if v.editingOpt && i == v.optCursor {
			text = v.optInput.View()
		} else if text == "" {
			text = s.TitleMuted.Render("(empty)")
		}
		line := mark + " " + text
		if v.itemFocusIdx == 2 && i == v.optCursor {
			lines = append(lines, s.ListSelected.Render(line))
		} else {
			lines = append(lines, s.ListItem.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
