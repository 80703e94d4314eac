package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skilltracker/skt/internal/api"
	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/ui/keys"
	"github.com/skilltracker/skt/internal/ui/styles"
)

// CourseViewerView walks a course's content list one item at a time. Lessons
// just render; task items collect an answer and accept a single submission,
// after which the item is locked and shows the grading result.
type CourseViewerView struct {
	ctx    Context
	styles *styles.Styles
	keys   keys.KeyMap

	courseID int64
	course   *models.Course
	loaded   bool
	errMsg   string

	itemIdx   int
	optCursor int
	selected  map[string]map[int64]bool   // item key -> chosen option IDs
	answer    textarea.Model              // long answer draft for the current item
	answers   map[string]string           // item key -> submitted long answer text
	results   map[string]api.SubmitResult // item key -> grading, presence means submitted
	busy      bool

	width  int
	height int
}

type courseLoadedMsg struct{ course *models.Course }

type submitDoneMsg struct {
	key    string
	result *api.SubmitResult
	err    error
}

func NewCourseViewerView(ctx Context, courseID int64) *CourseViewerView {
	answer := textarea.New()
	answer.Placeholder = "Your answer"
	answer.CharLimit = 5000
	answer.SetWidth(50)
	answer.SetHeight(5)
	answer.ShowLineNumbers = false

	return &CourseViewerView{
		ctx:      ctx,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		courseID: courseID,
		selected: make(map[string]map[int64]bool),
		answers:  make(map[string]string),
		results:  make(map[string]api.SubmitResult),
		answer:   answer,
	}
}

func (v *CourseViewerView) Init() tea.Cmd {
	return v.load
}

func (v *CourseViewerView) load() tea.Msg {
	course, err := v.ctx.API.Course(context.Background(), v.courseID)
	if err != nil {
		return errMsg{err}
	}
	return courseLoadedMsg{course: course}
}

func (v *CourseViewerView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.answer.SetWidth(styles.Clamp(styles.ContentWidth(v.width)-10, 20, 60))
		return v, nil

	case courseLoadedMsg:
		v.course = msg.course
		v.loaded = true
		v.onItemChange()
		return v, nil

	case errMsg:
		v.loaded = true
		v.errMsg = apperr.Message(msg.err)
		return v, nil

	case submitDoneMsg:
		v.busy = false
		if msg.err != nil {
			// the drafted answer stays put for a retry
			v.errMsg = apperr.Message(msg.err)
			return v, nil
		}
		v.results[msg.key] = *msg.result
		v.errMsg = ""
		return v, nil

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v *CourseViewerView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := v.currentItem()
	longAnswerOpen := item != nil &&
		item.Type == models.ItemTask &&
		item.TaskType == models.TaskLongAnswer &&
		!v.submitted(item)

	switch {
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToDashboard{} }

	// while a long answer is being typed, only the ctrl chords navigate so
	// the arrows stay with the textarea
	case msg.String() == "ctrl+p", !longAnswerOpen && key.Matches(msg, v.keys.Left):
		if v.itemIdx > 0 {
			v.itemIdx--
			v.onItemChange()
		}
		return v, nil

	case msg.String() == "ctrl+n", !longAnswerOpen && key.Matches(msg, v.keys.Right):
		if v.course != nil && v.itemIdx < len(v.course.Items)-1 {
			v.itemIdx++
			v.onItemChange()
		}
		return v, nil

	case msg.String() == "ctrl+s":
		if item != nil && item.Type == models.ItemTask && !v.submitted(item) {
			return v, v.submit(item)
		}
		return v, nil
	}

	if item == nil || item.Type != models.ItemTask || v.submitted(item) {
		return v, nil
	}

	if item.TaskType.HasOptions() {
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.optCursor > 0 {
				v.optCursor--
			}
			return v, nil
		case key.Matches(msg, v.keys.Down):
			if v.optCursor < len(item.Options)-1 {
				v.optCursor++
			}
			return v, nil
		case msg.String() == " ", key.Matches(msg, v.keys.Enter):
			v.toggleOption(item)
			return v, nil
		}
		return v, nil
	}

	if longAnswerOpen {
		var cmd tea.Cmd
		v.answer, cmd = v.answer.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *CourseViewerView) currentItem() *models.ContentItem {
	if v.course == nil || v.itemIdx >= len(v.course.Items) {
		return nil
	}
	return &v.course.Items[v.itemIdx]
}

func (v *CourseViewerView) submitted(item *models.ContentItem) bool {
	_, ok := v.results[item.Key()]
	return ok
}

func (v *CourseViewerView) onItemChange() {
	v.optCursor = 0
	v.errMsg = ""
	v.answer.Reset()
	if item := v.currentItem(); item != nil &&
		item.Type == models.ItemTask &&
		item.TaskType == models.TaskLongAnswer {
		v.answer.Focus()
	}
}

// toggleOption applies the task type's selection rule: radio for single
// choice, independent checkboxes for multiple choice
func (v *CourseViewerView) toggleOption(item *models.ContentItem) {
	if v.optCursor >= len(item.Options) {
		return
	}
	k := item.Key()
	sel := v.selected[k]
	if sel == nil {
		sel = make(map[int64]bool)
		v.selected[k] = sel
	}
	id := item.Options[v.optCursor].ID
	if item.TaskType == models.TaskSingleChoice {
		already := sel[id]
		for o := range sel {
			delete(sel, o)
		}
		if !already {
			sel[id] = true
		}
		return
	}
	sel[id] = !sel[id]
}

func (v *CourseViewerView) submit(item *models.ContentItem) tea.Cmd {
	var a api.Answer
	if item.TaskType == models.TaskLongAnswer {
		a.Text = strings.TrimSpace(v.answer.Value())
		// remembered so the locked item still shows what was sent
		v.answers[item.Key()] = a.Text
	} else {
		for _, opt := range item.Options {
			if v.selected[item.Key()][opt.ID] {
				a.OptionIDs = append(a.OptionIDs, opt.ID)
			}
		}
	}
	if a.Text == "" && len(a.OptionIDs) == 0 {
		v.errMsg = "select or write an answer first"
		return nil
	}

	v.busy = true
	v.errMsg = ""
	id := item.ID
	k := item.Key()
	return func() tea.Msg {
		result, err := v.ctx.API.SubmitAnswer(context.Background(), id, a)
		return submitDoneMsg{key: k, result: result, err: err}
	}
}

func (v *CourseViewerView) View() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}
	if v.course == nil {
		return styles.CenterView(s.ErrorText.Render(v.errMsg), v.width, v.height)
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(v.course.Title))
	b.WriteString("  ")
	b.WriteString(s.TitleMuted.Render(fmt.Sprintf("item %d of %d", v.itemIdx+1, len(v.course.Items))))
	b.WriteString("\n\n")

	item := v.currentItem()
	if item == nil {
		b.WriteString(s.TitleMuted.Render("this course has no content"))
	} else if item.Type == models.ItemLesson {
		b.WriteString(v.renderLesson(item))
	} else {
		b.WriteString(v.renderTask(item))
	}

	if v.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(s.ErrorText.Render(v.errMsg))
	}

	b.WriteString("\n\n")
	hint := "←→: navigate • Esc: back"
	if item != nil && item.Type == models.ItemTask && !v.submitted(item) {
		if item.TaskType.HasOptions() {
			hint = "↑↓: option • Space: select • Ctrl+S: submit • ←→: navigate • Esc: back"
		} else {
			hint = "Ctrl+S: submit • Ctrl+N/P: navigate • Esc: back"
		}
	}
	b.WriteString(s.Help.Render(hint))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *CourseViewerView) renderLesson(item *models.ContentItem) string {
	s := v.styles
	width := styles.Clamp(styles.ContentWidth(v.width)-4, 20, styles.MaxWidth)
	body := item.Content
	if body == "" {
		body = s.TitleMuted.Render("(no content)")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(item.Title),
		"",
		lipgloss.NewStyle().Width(width).Render(body),
	)
}

func (v *CourseViewerView) renderTask(item *models.ContentItem) string {
	s := v.styles
	done := v.submitted(item)

	parts := []string{
		s.Title.Render(item.Title),
		s.TitleMuted.Render(string(item.TaskType)),
		"",
		item.Question,
		"",
	}

	if item.TaskType.HasOptions() {
		sel := v.selected[item.Key()]
		for i, opt := range item.Options {
			mark := "( )"
			if item.TaskType == models.TaskMultipleChoice {
				mark = "[ ]"
			}
			if sel[opt.ID] {
				if item.TaskType == models.TaskMultipleChoice {
					mark = "[x]"
				} else {
					mark = "(•)"
				}
			}
			line := mark + " " + opt.Text
			if !done && i == v.optCursor {
				parts = append(parts, s.ListSelected.Render(line))
			} else {
				parts = append(parts, s.ListItem.Render(line))
			}
		}
	} else if !done {
		parts = append(parts, s.InputFocused.Render(v.answer.View()))
	} else {
		parts = append(parts, s.Input.Render(v.answers[item.Key()]))
	}

	if done {
		r := v.results[item.Key()]
		verdict := s.ErrorText.Render("✗ incorrect")
		if r.IsCorrect {
			verdict = s.SuccessText.Render("✓ correct")
		}
		if r.Score != nil {
			verdict += s.TitleMuted.Render(fmt.Sprintf("  score: %g", *r.Score))
		}
		parts = append(parts, "", verdict, s.TitleMuted.Render("answer submitted"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
