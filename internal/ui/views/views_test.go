package views

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skilltracker/skt/internal/api"
	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/session"
	"github.com/skilltracker/skt/internal/store"
)

// testContext builds a Context with a signed-in employee (user 42) backed by
// a throwaway store. The API client points nowhere; tests drive views by
// feeding messages directly and never execute network commands.
func testContext(t *testing.T) Context {
	t.Helper()
	kv, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	client := api.New("http://127.0.0.1:0", time.Second, zap.NewNop())
	sessions := session.NewStore(kv, client, zap.NewNop())

	b, err := json.Marshal(models.Session{
		Token: "tok", UserID: 42, Email: "jo@example.com", Name: "Jo", Role: models.RoleEmployee,
	})
	require.NoError(t, err)
	require.NoError(t, kv.Set("session", string(b)))
	require.NotNil(t, sessions.Load())

	return Context{API: client, Sessions: sessions, Log: zap.NewNop()}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTaskViewerSoftDeletedCommentKeepsItsPlace(t *testing.T) {
	v := NewTaskViewerView(testContext(t), 1)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	v.Update(taskViewLoadedMsg{
		task: &models.Task{ID: 1, Title: "Quarterly review", Status: models.StatusPending},
		comments: []models.Comment{
			{ID: 1, TaskID: 1, UserID: 7, Text: "first remark", CreatedAt: base},
			{ID: 2, TaskID: 1, UserID: 42, Text: "retracted text", Deleted: true, CreatedAt: base.Add(time.Minute)},
			{ID: 3, TaskID: 1, UserID: 7, Text: "last remark", CreatedAt: base.Add(2 * time.Minute)},
		},
	})

	out := v.View()
	assert.Contains(t, out, "first remark")
	assert.Contains(t, out, deletedCommentPlaceholder)
	assert.Contains(t, out, "last remark")
	assert.NotContains(t, out, "retracted text")

	// the placeholder keeps the deleted comment's position in the thread
	assert.Less(t, strings.Index(out, "first remark"), strings.Index(out, deletedCommentPlaceholder))
	assert.Less(t, strings.Index(out, deletedCommentPlaceholder), strings.Index(out, "last remark"))
}

func TestTaskViewerDeletedCommentIsNotEditable(t *testing.T) {
	v := NewTaskViewerView(testContext(t), 1)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	v.Update(taskViewLoadedMsg{
		task: &models.Task{ID: 1, Title: "t"},
		comments: []models.Comment{
			{ID: 2, TaskID: 1, UserID: 42, Text: "gone", Deleted: true},
		},
	})

	// own comment, but deleted: edit must not open the composer
	v.Update(keyRunes("e"))
	assert.False(t, v.composing)
}

func TestCourseViewerLocksAfterSubmission(t *testing.T) {
	v := NewCourseViewerView(testContext(t), 1)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	v.Update(courseLoadedMsg{course: &models.Course{
		ID: 1, Title: "Safety",
		Items: []models.ContentItem{{
			ID: 11, Type: models.ItemTask, Title: "Pick one",
			TaskType: models.TaskSingleChoice, Question: "which?",
			Options: []models.Option{{ID: 101, Text: "red"}, {ID: 102, Text: "green"}},
		}},
	}})

	// radio selection: choosing the second option clears the first
	v.Update(tea.KeyMsg{Type: tea.KeySpace})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, v.selected["11"][101])
	assert.True(t, v.selected["11"][102])

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.True(t, v.busy)

	v.Update(submitDoneMsg{key: "11", result: &api.SubmitResult{IsCorrect: true}})
	out := v.View()
	assert.Contains(t, out, "correct")
	assert.Contains(t, out, "answer submitted")

	// locked: no further selection changes, no second submission
	v.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, v.selected["11"][102])
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
}

func TestCourseViewerKeepsSubmittedLongAnswer(t *testing.T) {
	v := NewCourseViewerView(testContext(t), 1)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	v.Update(courseLoadedMsg{course: &models.Course{
		ID: 1, Title: "Writing",
		Items: []models.ContentItem{
			{ID: 20, Type: models.ItemLesson, Title: "Intro", Content: "read me"},
			{ID: 21, Type: models.ItemTask, Title: "Essay", TaskType: models.TaskLongAnswer, Question: "why?"},
		},
	}})

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	v.Update(keyRunes("because"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	v.Update(submitDoneMsg{key: "21", result: &api.SubmitResult{IsCorrect: false}})

	// navigating away and back must still show what was sent
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	out := v.View()
	assert.Contains(t, out, "because")
	assert.Contains(t, out, "answer submitted")
}

func TestCourseEditorCursorStaysOnEditedItem(t *testing.T) {
	v := NewCourseEditorView(testContext(t))
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

	for _, title := range []string{"first", "second", "third"} {
		v.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
		v.Update(tea.KeyMsg{Type: tea.KeyEnter}) // lesson
		v.Update(keyRunes(title))
		v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	}
	require.Len(t, v.ed.Items(), 3)

	// move to the items section, select the middle item and edit it
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	v.Update(keyRunes("e"))
	v.Update(keyRunes(" v2"))
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	items := v.ed.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].Title)
	assert.Equal(t, "second v2", items[1].Title)
	assert.Equal(t, "third", items[2].Title)
	assert.Equal(t, 1, v.itemCursor)
}

func TestAssignReportsPartialProgress(t *testing.T) {
	v := NewAssignView(testContext(t), 5, "Safety")
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	v.Update(employeesLoadedMsg{employees: []models.Employee{
		{ID: 1, GivenName: "A"}, {ID: 2, GivenName: "B"}, {ID: 3, GivenName: "C"},
	}})
	v.checked[1] = true
	v.checked[2] = true

	v.Update(assignDoneMsg{assigned: 1, err: apperr.New(apperr.Fetch, "server unavailable")})
	out := v.View()
	assert.Contains(t, out, "assigned 1 of 2")
	assert.Contains(t, out, "server unavailable")

	// a clean run leaves the view
	_, cmd := v.Update(assignDoneMsg{assigned: 2})
	require.NotNil(t, cmd)
	assert.Equal(t, BackToDashboard{}, cmd())
}
