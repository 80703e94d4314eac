package views

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skilltracker/skt/internal/api"
	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/ui/keys"
	"github.com/skilltracker/skt/internal/ui/styles"
)

const deadlineLayout = "2006-01-02"

// TaskEditorView creates or edits a standalone task record
type TaskEditorView struct {
	ctx    Context
	styles *styles.Styles
	keys   keys.KeyMap

	taskID    int64 // 0 means create
	employees []models.Employee
	loaded    bool

	title    textinput.Model
	desc     textarea.Model
	deadline textinput.Model
	progress textinput.Model
	status   models.TaskStatus
	assignee int // index into employees, -1 = unassigned
	focusIdx int // 0=title, 1=desc, 2=deadline, 3=assignee, 4=status, 5=progress, 6=save

	busy   bool
	errMsg string

	width  int
	height int
}

type taskEditorLoadedMsg struct {
	task      *models.Task
	employees []models.Employee
}

type taskSavedMsg struct{ err error }

func NewTaskEditorView(ctx Context, taskID int64) *TaskEditorView {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200
	title.Focus()

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 2000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	deadline := textinput.New()
	deadline.Placeholder = "Deadline (YYYY-MM-DD, optional)"
	deadline.CharLimit = 10

	progress := textinput.New()
	progress.Placeholder = "0"
	progress.CharLimit = 3

	return &TaskEditorView{
		ctx:      ctx,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		taskID:   taskID,
		title:    title,
		desc:     desc,
		deadline: deadline,
		progress: progress,
		status:   models.StatusPending,
		assignee: -1,
	}
}

func (v *TaskEditorView) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, v.load)
}

func (v *TaskEditorView) load() tea.Msg {
	ctx := context.Background()
	employees, err := v.ctx.API.Employees(ctx)
	if err != nil {
		return errMsg{err}
	}
	var task *models.Task
	if v.taskID != 0 {
		task, err = v.ctx.API.Task(ctx, v.taskID)
		if err != nil {
			return errMsg{err}
		}
	}
	return taskEditorLoadedMsg{task: task, employees: employees}
}

func (v *TaskEditorView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.desc.SetWidth(styles.Clamp(styles.ContentWidth(v.width)-10, 20, 50))
		return v, nil

	case taskEditorLoadedMsg:
		v.loaded = true
		v.employees = msg.employees
		if msg.task != nil {
			v.seed(msg.task)
		}
		return v, nil

	case errMsg:
		v.loaded = true
		v.errMsg = apperr.Message(msg.err)
		return v, nil

	case taskSavedMsg:
		v.busy = false
		if msg.err != nil {
			v.errMsg = apperr.Message(msg.err)
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
			v.focusIdx = (v.focusIdx + 1) % 7
			v.updateFocus()
			return v, nil

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 6) % 7
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Right), msg.String() == " ":
			switch v.focusIdx {
			case 3:
				v.cycleAssignee(key.Matches(msg, v.keys.Left))
				return v, nil
			case 4:
				v.cycleStatus()
				return v, nil
			}

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx == 6 {
				return v, v.submit()
			}
			if v.focusIdx == 3 {
				v.cycleAssignee(false)
				return v, nil
			}
			if v.focusIdx == 4 {
				v.cycleStatus()
				return v, nil
			}
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.title, cmd = v.title.Update(msg)
	case 1:
		v.desc, cmd = v.desc.Update(msg)
	case 2:
		v.deadline, cmd = v.deadline.Update(msg)
	case 5:
		v.progress, cmd = v.progress.Update(msg)
	}
	return v, cmd
}

func (v *TaskEditorView) seed(t *models.Task) {
	v.title.SetValue(t.Title)
	v.desc.SetValue(t.Description)
	if t.Deadline != nil {
		v.deadline.SetValue(t.Deadline.Format(deadlineLayout))
	}
	v.progress.SetValue(strconv.Itoa(t.Progress))
	v.status = t.Status
	v.assignee = -1
	for i, e := range v.employees {
		if e.ID == t.EmployeeID {
			v.assignee = i
			break
		}
	}
}

func (v *TaskEditorView) cycleAssignee(back bool) {
	n := len(v.employees)
	if n == 0 {
		return
	}
	// -1 (unassigned) participates in the cycle
	if back {
		v.assignee--
		if v.assignee < -1 {
			v.assignee = n - 1
		}
	} else {
		v.assignee++
		if v.assignee >= n {
			v.assignee = -1
		}
	}
}

func (v *TaskEditorView) cycleStatus() {
	switch v.status {
	case models.StatusPending:
		v.status = models.StatusInProgress
	case models.StatusInProgress:
		v.status = models.StatusDone
	default:
		v.status = models.StatusPending
	}
}

func (v *TaskEditorView) updateFocus() {
	v.title.Blur()
	v.desc.Blur()
	v.deadline.Blur()
	v.progress.Blur()
	switch v.focusIdx {
	case 0:
		v.title.Focus()
	case 1:
		v.desc.Focus()
	case 2:
		v.deadline.Focus()
	case 5:
		v.progress.Focus()
	}
}

func (v *TaskEditorView) submit() tea.Cmd {
	payload := api.TaskPayload{
		Title:       strings.TrimSpace(v.title.Value()),
		Description: strings.TrimSpace(v.desc.Value()),
		Status:      v.status,
	}
	if payload.Title == "" {
		v.errMsg = "a title is required"
		return nil
	}

	if raw := strings.TrimSpace(v.deadline.Value()); raw != "" {
		t, err := time.ParseInLocation(deadlineLayout, raw, time.Local)
		if err != nil {
			v.errMsg = "deadline must look like 2026-09-15"
			return nil
		}
		// deadlines land at end of day so "due today" stays actionable
		eod := t.Add(24*time.Hour - time.Second)
		payload.Deadline = &eod
	}

	if raw := strings.TrimSpace(v.progress.Value()); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 0 || p > 100 {
			v.errMsg = "progress must be a number between 0 and 100"
			return nil
		}
		payload.Progress = p
	}

	if v.assignee >= 0 && v.assignee < len(v.employees) {
		payload.EmployeeID = v.employees[v.assignee].ID
	}

	v.busy = true
	v.errMsg = ""
	id := v.taskID
	return func() tea.Msg {
		var err error
		if id == 0 {
			_, err = v.ctx.API.CreateTask(context.Background(), payload)
		} else {
			_, err = v.ctx.API.UpdateTask(context.Background(), id, payload)
		}
		return taskSavedMsg{err: err}
	}
}

func (v *TaskEditorView) View() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	contentWidth := styles.ContentWidth(v.width)
	inputWidth := styles.Clamp(contentWidth-6, 20, 50)

	fieldStyle := func(i int) lipgloss.Style {
		if v.focusIdx == i {
			return s.InputFocused
		}
		return s.Input
	}
	pillStyle := func(i int) lipgloss.Style {
		if v.focusIdx == i {
			return s.ButtonFocused
		}
		return s.Button
	}

	heading := "New Task"
	if v.taskID != 0 {
		heading = "Edit Task"
	}

	assigneeLabel := "unassigned"
	if v.assignee >= 0 && v.assignee < len(v.employees) {
		assigneeLabel = v.employees[v.assignee].DisplayName()
	}

	btnLabel := " Save "
	if v.busy {
		btnLabel = " Saving... "
	}
	btnStyle := s.ButtonPrimary
	if v.focusIdx == 6 {
		btnStyle = s.ButtonFocused
	}

	parts := []string{
		s.Title.Render(heading),
		"",
		"Title:",
		fieldStyle(0).Width(inputWidth).Render(v.title.View()),
		"Description:",
		fieldStyle(1).Render(v.desc.View()),
		"Deadline:",
		fieldStyle(2).Width(inputWidth).Render(v.deadline.View()),
		"",
		"Assignee: " + pillStyle(3).Render(" "+assigneeLabel+" "),
		"Status:   " + pillStyle(4).Render(" "+string(v.status)+" "),
		"",
		"Progress (%):",
		fieldStyle(5).Width(10).Render(v.progress.View()),
		"",
		btnStyle.Render(btnLabel),
	}
	if v.errMsg != "" {
		parts = append(parts, "", s.ErrorText.Render(v.errMsg))
	}
	parts = append(parts, "",
		s.TitleMuted.Render("Tab: next • ←→/Space: cycle • Ctrl+S: save • Esc: back"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, parts...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
