package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
)

func TestWizardStepsForLesson(t *testing.T) {
	e := New(nil)
	assert.Equal(t, StepClosed, e.Step())
	assert.Nil(t, e.Draft())

	e.Open()
	assert.Equal(t, StepChoosingKind, e.Step())

	e.ChooseKind(models.ItemLesson)
	assert.Equal(t, StepEditing, e.Step())
	require.NotNil(t, e.Draft())
	assert.Equal(t, models.ItemLesson, e.Draft().Type)
}

func TestWizardStepsForTask(t *testing.T) {
	e := New(nil)
	e.Open()
	e.ChooseKind(models.ItemTask)
	assert.Equal(t, StepChoosingTaskType, e.Step())
	assert.Nil(t, e.Draft())

	e.Back()
	assert.Equal(t, StepChoosingKind, e.Step())

	e.ChooseKind(models.ItemTask)
	e.ChooseTaskType(models.TaskSingleChoice)
	assert.Equal(t, StepEditing, e.Step())
	require.NotNil(t, e.Draft())
	assert.Equal(t, models.ItemTask, e.Draft().Type)
	assert.Equal(t, models.TaskSingleChoice, e.Draft().TaskType)
	assert.NotNil(t, e.Draft().Options)
}

func TestCancelDiscardsDraft(t *testing.T) {
	e := New(nil)
	e.Open()
	e.ChooseKind(models.ItemLesson)
	e.Draft().Title = "half written"

	e.Cancel()
	assert.Equal(t, StepClosed, e.Step())
	assert.Nil(t, e.Draft())
	assert.Empty(t, e.Items())
}

func TestSaveRejectsEmptyTitle(t *testing.T) {
	e := New(nil)
	e.Open()
	e.ChooseKind(models.ItemLesson)
	e.Draft().Content = "body without a title"

	err := e.Save()
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	// the draft and the list are untouched so the user can fix it
	assert.Equal(t, StepEditing, e.Step())
	require.NotNil(t, e.Draft())
	assert.Empty(t, e.Items())
}

func TestSaveAppendsNewItemWithLocalID(t *testing.T) {
	e := New(nil)
	e.Open()
	e.ChooseKind(models.ItemLesson)
	e.Draft().Title = "Lesson A"

	require.NoError(t, e.Save())
	assert.Equal(t, StepClosed, e.Step())
	require.Len(t, e.Items(), 1)
	assert.Equal(t, "Lesson A", e.Items()[0].Title)
	assert.NotEmpty(t, e.Items()[0].LocalID)
}

func TestSaveReplacesEditedItemInPlace(t *testing.T) {
	e := New(nil)
	for _, title := range []string{"first", "second", "third"} {
		e.Open()
		e.ChooseKind(models.ItemLesson)
		e.Draft().Title = title
		require.NoError(t, e.Save())
	}

	key := e.Items()[1].Key()
	require.True(t, e.Edit(key))
	e.Draft().Title = "second, revised"
	require.NoError(t, e.Save())

	require.Len(t, e.Items(), 3)
	assert.Equal(t, "first", e.Items()[0].Title)
	assert.Equal(t, "second, revised", e.Items()[1].Title)
	assert.Equal(t, "third", e.Items()[2].Title)
	assert.Equal(t, key, e.Items()[1].Key())
}

func TestEditDoesNotAliasTheListEntry(t *testing.T) {
	e := New(nil)
	e.Open()
	e.ChooseKind(models.ItemTask)
	e.ChooseTaskType(models.TaskMultipleChoice)
	e.Draft().Title = "quiz"
	e.AddOption()
	e.Draft().Options[0].Text = "original"
	require.NoError(t, e.Save())

	require.True(t, e.Edit(e.Items()[0].Key()))
	e.Draft().Options[0].Text = "changed"
	e.Cancel()

	assert.Equal(t, "original", e.Items()[0].Options[0].Text)
}

func TestEditUnknownKey(t *testing.T) {
	e := New(nil)
	assert.False(t, e.Edit("nope"))
	assert.Equal(t, StepClosed, e.Step())
}

func TestDeletePreservesOrder(t *testing.T) {
	e := New(nil)
	for _, title := range []string{"a", "b", "c", "d"} {
		e.Open()
		e.ChooseKind(models.ItemLesson)
		e.Draft().Title = title
		require.NoError(t, e.Save())
	}

	e.Delete(e.Items()[1].Key())

	require.Len(t, e.Items(), 3)
	assert.Equal(t, "a", e.Items()[0].Title)
	assert.Equal(t, "c", e.Items()[1].Title)
	assert.Equal(t, "d", e.Items()[2].Title)
}

func TestSingleChoiceRadioSemantics(t *testing.T) {
	e := New(nil)
	e.Open()
	e.ChooseKind(models.ItemTask)
	e.ChooseTaskType(models.TaskSingleChoice)
	for i := 0; i < 3; i++ {
		e.AddOption()
	}

	e.ToggleCorrect(0)
	e.ToggleCorrect(2)

	opts := e.Draft().Options
	assert.False(t, opts[0].IsCorrect)
	assert.False(t, opts[1].IsCorrect)
	assert.True(t, opts[2].IsCorrect)
}

func TestMultipleChoiceTogglesIndependently(t *testing.T) {
	e := New(nil)
	e.Open()
	e.ChooseKind(models.ItemTask)
	e.ChooseTaskType(models.TaskMultipleChoice)
	for i := 0; i < 3; i++ {
		e.AddOption()
	}

	e.ToggleCorrect(0)
	e.ToggleCorrect(2)
	assert.True(t, e.Draft().Options[0].IsCorrect)
	assert.False(t, e.Draft().Options[1].IsCorrect)
	assert.True(t, e.Draft().Options[2].IsCorrect)

	e.ToggleCorrect(0)
	assert.False(t, e.Draft().Options[0].IsCorrect)
	assert.True(t, e.Draft().Options[2].IsCorrect)
}

func TestRemoveOption(t *testing.T) {
	e := New(nil)
	e.Open()
	e.ChooseKind(models.ItemTask)
	e.ChooseTaskType(models.TaskMultipleChoice)
	for _, text := range []string{"x", "y", "z"} {
		e.AddOption()
		e.Draft().Options[len(e.Draft().Options)-1].Text = text
	}

	e.RemoveOption(1)
	require.Len(t, e.Draft().Options, 2)
	assert.Equal(t, "x", e.Draft().Options[0].Text)
	assert.Equal(t, "z", e.Draft().Options[1].Text)

	// out of range is a no-op
	e.RemoveOption(5)
	e.RemoveOption(-1)
	assert.Len(t, e.Draft().Options, 2)
}

func TestBuildRejectsEmptyList(t *testing.T) {
	e := New(nil)
	items, err := e.Build()
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
	assert.Nil(t, items)
}

func TestBuildStripsLocalIdentifiers(t *testing.T) {
	e := New([]models.ContentItem{
		{ID: 42, Type: models.ItemLesson, Title: "existing"},
	})

	e.Open()
	e.ChooseKind(models.ItemTask)
	e.ChooseTaskType(models.TaskSingleChoice)
	e.Draft().Title = "pick one"
	e.Draft().Question = "which is it?"
	for _, text := range []string{"red", "green"} {
		e.AddOption()
		e.Draft().Options[len(e.Draft().Options)-1].Text = text
	}
	e.ToggleCorrect(1)
	require.NoError(t, e.Save())

	items, err := e.Build()
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Zero(t, it.ID)
		assert.Empty(t, it.LocalID)
	}
	assert.Equal(t, "pick one", items[1].Title)
	assert.True(t, items[1].Options[1].IsCorrect)

	// the in-editor list keeps its identities
	assert.EqualValues(t, 42, e.Items()[0].ID)
	assert.NotEmpty(t, e.Items()[1].LocalID)
}
