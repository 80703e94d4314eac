// Package ui wires the views together. The App owns navigation: every view
// change passes through the access guard, and a denied navigation is parked
// so login can return to it.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/skilltracker/skt/internal/auth"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/ui/views"
)

type App struct {
	ctx     views.Context
	current tea.Model

	// pending holds a navigation that bounced off the guard; it replays
	// after the next successful login
	pending tea.Msg

	width  int
	height int
}

// NewApp starts on the login view or, when a stored session survived
// restoration, straight on the dashboard.
func NewApp(ctx views.Context) *App {
	a := &App{ctx: ctx}
	if ctx.Sessions.Current() != nil {
		a.current = a.dashboard()
	} else {
		a.current = views.NewLoginView(ctx)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return a.current.Init()
}

// open swaps in a view and replays the window size so it lays out correctly
func (a *App) open(m tea.Model) tea.Cmd {
	a.current = m
	return tea.Batch(
		m.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

// dashboard picks the home view for the session's role
func (a *App) dashboard() tea.Model {
	sess := a.ctx.Sessions.Current()
	if sess != nil && sess.Role == models.RoleManager {
		return views.NewManagerDashboardView(a.ctx)
	}
	return views.NewEmployeeDashboardView(a.ctx)
}

// guard runs the access check for a navigation. Denied navigations go to
// login (keeping the request for later) or bounce home.
func (a *App) guard(nav tea.Msg, build func() tea.Model, roles ...models.Role) tea.Cmd {
	switch auth.Authorize(a.ctx.Sessions.Current(), roles...) {
	case auth.Allow:
		a.pending = nil
		return a.open(build())
	case auth.RedirectLogin:
		a.pending = nav
		a.ctx.Log.Info("navigation requires login")
		return a.open(views.NewLoginView(a.ctx))
	default:
		a.pending = nil
		a.ctx.Log.Warn("navigation denied for role",
			zap.String("role", string(a.ctx.Sessions.Current().Role)))
		return a.open(a.dashboard())
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.LoggedIn:
		if nav := a.pending; nav != nil {
			a.pending = nil
			return a, func() tea.Msg { return nav }
		}
		return a, a.open(a.dashboard())

	case views.LoggedOut, views.ShowLogin:
		a.pending = nil
		return a, a.open(views.NewLoginView(a.ctx))

	case views.ShowRegister:
		return a, a.open(views.NewRegisterView(a.ctx))

	case views.BackToDashboard:
		return a, a.guard(msg, a.dashboard)

	case views.OpenCourseViewer:
		return a, a.guard(msg, func() tea.Model {
			return views.NewCourseViewerView(a.ctx, msg.CourseID)
		})

	case views.OpenTaskViewer:
		return a, a.guard(msg, func() tea.Model {
			return views.NewTaskViewerView(a.ctx, msg.TaskID)
		})

	case views.OpenCourseEditor:
		return a, a.guard(msg, func() tea.Model {
			return views.NewCourseEditorView(a.ctx)
		}, models.RoleManager)

	case views.OpenTaskEditor:
		return a, a.guard(msg, func() tea.Model {
			return views.NewTaskEditorView(a.ctx, msg.TaskID)
		}, models.RoleManager)

	case views.OpenAssign:
		return a, a.guard(msg, func() tea.Model {
			return views.NewAssignView(a.ctx, msg.CourseID, msg.Title)
		}, models.RoleManager)
	}

	var cmd tea.Cmd
	a.current, cmd = a.current.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.current.View()
}
