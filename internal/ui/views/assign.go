package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/ui/keys"
	"github.com/skilltracker/skt/internal/ui/styles"
)

// AssignView assigns a course to one or more employees with an optional
// deadline. Assignment only adds; existing assignments are left alone.
type AssignView struct {
	ctx    Context
	styles *styles.Styles
	keys   keys.KeyMap

	courseID    int64
	courseTitle string

	employees []models.Employee
	checked   map[int64]bool
	cursor    int
	deadline  textinput.Model
	onList    bool // focus toggles between the list and the deadline field
	loaded    bool

	busy   bool
	errMsg string

	width  int
	height int
}

type employeesLoadedMsg struct{ employees []models.Employee }

type assignDoneMsg struct {
	assigned int
	err      error
}

func NewAssignView(ctx Context, courseID int64, title string) *AssignView {
	deadline := textinput.New()
	deadline.Placeholder = "Deadline (YYYY-MM-DD, optional)"
	deadline.CharLimit = 10

	return &AssignView{
		ctx:         ctx,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		courseID:    courseID,
		courseTitle: title,
		checked:     make(map[int64]bool),
		deadline:    deadline,
		onList:      true,
	}
}

func (v *AssignView) Init() tea.Cmd {
	return v.load
}

func (v *AssignView) load() tea.Msg {
	employees, err := v.ctx.API.Employees(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return employeesLoadedMsg{employees: employees}
}

func (v *AssignView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case employeesLoadedMsg:
		v.employees = msg.employees
		v.loaded = true
		return v, nil

	case errMsg:
		v.loaded = true
		v.errMsg = apperr.Message(msg.err)
		return v, nil

	case assignDoneMsg:
		v.busy = false
		if msg.err != nil {
			v.errMsg = apperr.Message(msg.err)
			if msg.assigned > 0 {
				v.errMsg = fmt.Sprintf("assigned %d of %d, then: %s",
					msg.assigned, v.checkedCount(), apperr.Message(msg.err))
			}
			return v, nil
		}
		return v, func() tea.Msg { return BackToDashboard{} }

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}

		switch {
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToDashboard{} }

		case msg.String() == "ctrl+s":
			return v, v.submit()

		case key.Matches(msg, v.keys.Tab):
			v.onList = !v.onList
			if v.onList {
				v.deadline.Blur()
			} else {
				v.deadline.Focus()
			}
			return v, textinput.Blink
		}

		if v.onList {
			switch {
			case key.Matches(msg, v.keys.Up):
				if v.cursor > 0 {
					v.cursor--
				}
				return v, nil
			case key.Matches(msg, v.keys.Down):
				if v.cursor < len(v.employees)-1 {
					v.cursor++
				}
				return v, nil
			case msg.String() == " ", key.Matches(msg, v.keys.Enter):
				if v.cursor < len(v.employees) {
					id := v.employees[v.cursor].ID
					v.checked[id] = !v.checked[id]
				}
				return v, nil
			}
			return v, nil
		}

		var cmd tea.Cmd
		v.deadline, cmd = v.deadline.Update(msg)
		return v, cmd
	}

	return v, nil
}

func (v *AssignView) checkedCount() int {
	n := 0
	for _, e := range v.employees {
		if v.checked[e.ID] {
			n++
		}
	}
	return n
}

func (v *AssignView) submit() tea.Cmd {
	var ids []int64
	for _, e := range v.employees {
		if v.checked[e.ID] {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		v.errMsg = "select at least one employee"
		return nil
	}

	var deadline *time.Time
	if raw := strings.TrimSpace(v.deadline.Value()); raw != "" {
		t, err := time.ParseInLocation(deadlineLayout, raw, time.Local)
		if err != nil {
			v.errMsg = "deadline must look like 2026-09-15"
			return nil
		}
		eod := t.Add(24*time.Hour - time.Second)
		deadline = &eod
	}

	v.busy = true
	v.errMsg = ""
	courseID := v.courseID
	return func() tea.Msg {
		ctx := context.Background()
		for i, id := range ids {
			if err := v.ctx.API.AssignCourse(ctx, courseID, id, deadline); err != nil {
				// report how far we got; earlier assignments stand
				return assignDoneMsg{assigned: i, err: err}
			}
		}
		return assignDoneMsg{assigned: len(ids)}
	}
}

func (v *AssignView) View() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(s.Title.Render("Assign Course"))
	b.WriteString("  ")
	b.WriteString(s.TitleMuted.Render(v.courseTitle))
	b.WriteString("\n\n")

	if len(v.employees) == 0 {
		b.WriteString(s.TitleMuted.Render("no employees to assign"))
		b.WriteString("\n")
	}
	for i, e := range v.employees {
		mark := "[ ]"
		if v.checked[e.ID] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, e.DisplayName())
		if v.onList && i == v.cursor {
			b.WriteString(s.ListSelected.Render(line))
		} else {
			b.WriteString(s.ListItem.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("Deadline:\n")
	inputWidth := styles.Clamp(styles.ContentWidth(v.width)-6, 20, 40)
	deadlineStyle := s.Input
	if !v.onList {
		deadlineStyle = s.InputFocused
	}
	b.WriteString(deadlineStyle.Width(inputWidth).Render(v.deadline.View()))
	b.WriteString("\n")

	if v.busy {
		b.WriteString("\n")
		b.WriteString(s.TitleMuted.Render("Assigning..."))
		b.WriteString("\n")
	}
	if v.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(s.ErrorText.Render(v.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.Help.Render("Space: toggle • Tab: deadline • Ctrl+S: assign • Esc: back"))

	return styles.CenterView(b.String(), v.width, v.height)
}
