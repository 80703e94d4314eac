package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/ui/keys"
	"github.com/skilltracker/skt/internal/ui/styles"
)

// employee dashboard sections
const (
	sectionCourses = iota
	sectionTasks
)

// EmployeeDashboardView lists assigned courses and tasks
type EmployeeDashboardView struct {
	ctx    Context
	styles *styles.Styles
	keys   keys.KeyMap

	courses []models.Course
	tasks   []models.Task
	loaded  bool
	errMsg  string

	section int
	cursor  int

	width  int
	height int
}

type assignedLoadedMsg struct {
	courses []models.Course
	tasks   []models.Task
}

func NewEmployeeDashboardView(ctx Context) *EmployeeDashboardView {
	return &EmployeeDashboardView{
		ctx:    ctx,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

func (v *EmployeeDashboardView) Init() tea.Cmd {
	return v.load
}

func (v *EmployeeDashboardView) load() tea.Msg {
	ctx := context.Background()
	courses, err := v.ctx.API.AssignedCourses(ctx)
	if err != nil {
		return errMsg{err}
	}
	tasks, err := v.ctx.API.Tasks(ctx)
	if err != nil {
		return errMsg{err}
	}
	return assignedLoadedMsg{courses: courses, tasks: tasks}
}

func (v *EmployeeDashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case assignedLoadedMsg:
		v.courses = msg.courses
		v.tasks = msg.tasks
		v.loaded = true
		v.cursor = 0
		return v, nil

	case errMsg:
		v.loaded = true
		v.errMsg = apperr.Message(msg.err)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit

		case msg.String() == "ctrl+l":
			v.ctx.Sessions.Logout()
			return v, func() tea.Msg { return LoggedOut{} }

		case key.Matches(msg, v.keys.Tab):
			v.section = (v.section + 1) % 2
			v.cursor = 0
			return v, nil

		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
			return v, nil

		case key.Matches(msg, v.keys.Down):
			if v.cursor < v.sectionLen()-1 {
				v.cursor++
			}
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			if v.section == sectionCourses && v.cursor < len(v.courses) {
				id := v.courses[v.cursor].ID
				return v, func() tea.Msg { return OpenCourseViewer{CourseID: id} }
			}
			if v.section == sectionTasks && v.cursor < len(v.tasks) {
				id := v.tasks[v.cursor].ID
				return v, func() tea.Msg { return OpenTaskViewer{TaskID: id} }
			}
			return v, nil
		}
	}

	return v, nil
}

func (v *EmployeeDashboardView) sectionLen() int {
	if v.section == sectionCourses {
		return len(v.courses)
	}
	return len(v.tasks)
}

func (v *EmployeeDashboardView) View() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	var b strings.Builder

	name := ""
	if sess := v.ctx.Sessions.Current(); sess != nil {
		name = sess.Name
	}
	b.WriteString(s.Title.Render("My Assignments"))
	b.WriteString("  ")
	b.WriteString(s.TitleMuted.Render(name))
	b.WriteString("\n\n")

	if v.errMsg != "" {
		b.WriteString(s.ErrorText.Render(v.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(v.renderSectionTitle("Courses", sectionCourses))
	b.WriteString("\n")
	if len(v.courses) == 0 {
		b.WriteString(s.TitleMuted.Render("  no courses assigned yet"))
		b.WriteString("\n")
	}
	for i, c := range v.courses {
		line := fmt.Sprintf("%s — %d items", c.Title, len(c.Items))
		b.WriteString(v.renderLine(line, v.section == sectionCourses && i == v.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderSectionTitle("Tasks", sectionTasks))
	b.WriteString("\n")
	if len(v.tasks) == 0 {
		b.WriteString(s.TitleMuted.Render("  no tasks yet"))
		b.WriteString("\n")
	}
	now := time.Now()
	for i, t := range v.tasks {
		b.WriteString(v.renderLine(taskLine(s, t, now), v.section == sectionTasks && i == v.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.Help.Render(
		fmt.Sprintf("%s open • %s section • %s logout • %s quit",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("tab"),
			s.HelpKey.Render("ctrl+l"),
			s.HelpKey.Render("q"),
		),
	))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *EmployeeDashboardView) renderSectionTitle(title string, section int) string {
	if v.section == section {
		return v.styles.Title.Render(title)
	}
	return v.styles.TitleMuted.Render(title)
}

func (v *EmployeeDashboardView) renderLine(line string, selected bool) string {
	width := styles.Clamp(styles.ContentWidth(v.width)-4, 20, styles.MaxWidth)
	if selected {
		return v.styles.ListSelected.Width(width).Render(line)
	}
	return v.styles.ListItem.Width(width).Render(line)
}

// taskLine formats one task row with its status and urgency band
func taskLine(s *styles.Styles, t models.Task, now time.Time) string {
	line := fmt.Sprintf("%s [%s, %d%%]", t.Title, t.Status, t.Progress)
	u := models.DeadlineUrgency(t.Deadline, now)
	if label := u.Label(); label != "" {
		line += " " + s.UrgencyStyle(u).Render("("+label+")")
	}
	return line
}
