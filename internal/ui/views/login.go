package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/ui/keys"
	"github.com/skilltracker/skt/internal/ui/styles"
)

// LoginView signs the user in
type LoginView struct {
	ctx    Context
	styles *styles.Styles
	keys   keys.KeyMap

	email    textinput.Model
	password textinput.Model
	focusIdx int // 0=email, 1=password, 2=submit

	busy   bool
	errMsg string

	width  int
	height int
}

type loginDoneMsg struct{ err error }

func NewLoginView(ctx Context) *LoginView {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 100
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	return &LoginView{
		ctx:      ctx,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		email:    email,
		password: password,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) submit() tea.Cmd {
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if email == "" || password == "" {
		v.errMsg = "email and password are required"
		return nil
	}

	v.busy = true
	v.errMsg = ""
	return func() tea.Msg {
		_, err := v.ctx.Sessions.Login(context.Background(), email, password)
		return loginDoneMsg{err: err}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginDoneMsg:
		v.busy = false
		if msg.err != nil {
			v.errMsg = apperr.Message(msg.err)
			return v, nil
		}
		return v, func() tea.Msg { return LoggedIn{} }

	case tea.KeyMsg:
		if v.busy {
			// one outstanding operation per form
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case msg.String() == "ctrl+r":
			return v, func() tea.Msg { return ShowRegister{} }

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 3
			v.updateFocus()
			return v, nil

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 2) % 3
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < 2 {
				v.focusIdx++
				v.updateFocus()
				return v, nil
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.email, cmd = v.email.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) updateFocus() {
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.email.Focus()
	case 1:
		v.password.Focus()
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := styles.Clamp(contentWidth-6, 20, 50)

	emailStyle := s.Input
	passwordStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		emailStyle = s.InputFocused
	case 1:
		passwordStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	btnLabel := " Sign In "
	if v.busy {
		btnLabel = " Signing in... "
	}

	parts := []string{
		s.Title.Render("Skill Tracker"),
		"",
		"Email:",
		emailStyle.Width(inputWidth).Render(v.email.View()),
		"",
		"Password:",
		passwordStyle.Width(inputWidth).Render(v.password.View()),
		"",
		btnStyle.Render(btnLabel),
	}
	if v.errMsg != "" {
		parts = append(parts, "", s.ErrorText.Render(v.errMsg))
	}
	parts = append(parts, "",
		s.TitleMuted.Render("Tab: next • ↵: sign in • Ctrl+R: register"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, parts...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
