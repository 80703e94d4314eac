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

// ManagerDashboardView lists owned courses and task records with links into
// the editors and the assignment flow
type ManagerDashboardView struct {
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

type managerLoadedMsg struct {
	courses []models.Course
	tasks   []models.Task
}

func NewManagerDashboardView(ctx Context) *ManagerDashboardView {
	return &ManagerDashboardView{
		ctx:    ctx,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

func (v *ManagerDashboardView) Init() tea.Cmd {
	return v.load
}

func (v *ManagerDashboardView) load() tea.Msg {
	ctx := context.Background()
	courses, err := v.ctx.API.MyCourses(ctx)
	if err != nil {
		return errMsg{err}
	}
	tasks, err := v.ctx.API.Tasks(ctx)
	if err != nil {
		return errMsg{err}
	}
	return managerLoadedMsg{courses: courses, tasks: tasks}
}

func (v *ManagerDashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case managerLoadedMsg:
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

		case key.Matches(msg, v.keys.New):
			if v.section == sectionCourses {
				return v, func() tea.Msg { return OpenCourseEditor{} }
			}
			return v, func() tea.Msg { return OpenTaskEditor{TaskID: 0} }

		case key.Matches(msg, v.keys.Edit):
			if v.section == sectionTasks && v.cursor < len(v.tasks) {
				id := v.tasks[v.cursor].ID
				return v, func() tea.Msg { return OpenTaskEditor{TaskID: id} }
			}
			return v, nil

		case msg.String() == "a":
			if v.section == sectionCourses && v.cursor < len(v.courses) {
				c := v.courses[v.cursor]
				return v, func() tea.Msg { return OpenAssign{CourseID: c.ID, Title: c.Title} }
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

func (v *ManagerDashboardView) sectionLen() int {
	if v.section == sectionCourses {
		return len(v.courses)
	}
	return len(v.tasks)
}

func (v *ManagerDashboardView) View() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(s.Title.Render("Manager Dashboard"))
	b.WriteString("\n\n")

	if v.errMsg != "" {
		b.WriteString(s.ErrorText.Render(v.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(v.renderSectionTitle("My Courses", sectionCourses))
	b.WriteString("\n")
	if len(v.courses) == 0 {
		b.WriteString(s.TitleMuted.Render("  no courses yet, press 'n' to create one"))
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
		b.WriteString(s.TitleMuted.Render("  no tasks yet, press 'n' to create one"))
		b.WriteString("\n")
	}
	now := time.Now()
	for i, t := range v.tasks {
		b.WriteString(v.renderLine(taskLine(s, t, now), v.section == sectionTasks && i == v.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit task • %s assign course • %s section • %s logout • %s quit",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("a"),
			s.HelpKey.Render("tab"),
			s.HelpKey.Render("ctrl+l"),
			s.HelpKey.Render("q"),
		),
	))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *ManagerDashboardView) renderSectionTitle(title string, section int) string {
	if v.section == section {
		return v.styles.Title.Render(title)
	}
	return v.styles.TitleMuted.Render(title)
}

func (v *ManagerDashboardView) renderLine(line string, selected bool) string {
	width := styles.Clamp(styles.ContentWidth(v.width)-4, 20, styles.MaxWidth)
	if selected {
		return v.styles.ListSelected.Width(width).Render(line)
	}
	return v.styles.ListItem.Width(width).Render(line)
}
