package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skilltracker/skt/internal/api"
	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/ui/keys"
	"github.com/skilltracker/skt/internal/ui/styles"
)

// RegisterView creates an account and signs the user in
type RegisterView struct {
	ctx    Context
	styles *styles.Styles
	keys   keys.KeyMap

	givenName  textinput.Model
	familyName textinput.Model
	email      textinput.Model
	password   textinput.Model
	role       models.Role
	focusIdx   int // 0..3 inputs, 4=role, 5=submit

	busy   bool
	errMsg string

	width  int
	height int
}

type registerDoneMsg struct{ err error }

func NewRegisterView(ctx Context) *RegisterView {
	given := textinput.New()
	given.Placeholder = "Given name"
	given.CharLimit = 100
	given.Focus()

	family := textinput.New()
	family.Placeholder = "Family name"
	family.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 100

	password := textinput.New()
	password.Placeholder = "Password (8+ characters)"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	return &RegisterView{
		ctx:        ctx,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		givenName:  given,
		familyName: family,
		email:      email,
		password:   password,
		role:       models.RoleEmployee,
	}
}

func (v *RegisterView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *RegisterView) submit() tea.Cmd {
	payload := api.RegisterPayload{
		Email:      strings.TrimSpace(v.email.Value()),
		Password:   v.password.Value(),
		GivenName:  strings.TrimSpace(v.givenName.Value()),
		FamilyName: strings.TrimSpace(v.familyName.Value()),
		Role:       v.role,
	}

	v.busy = true
	v.errMsg = ""
	return func() tea.Msg {
		_, err := v.ctx.Sessions.Register(context.Background(), payload)
		return registerDoneMsg{err: err}
	}
}

func (v *RegisterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case registerDoneMsg:
		v.busy = false
		if msg.err != nil {
			if apperr.IsAlreadyExists(msg.err) {
				v.errMsg = "an account with this email already exists"
			} else {
				v.errMsg = apperr.Message(msg.err)
			}
			return v, nil
		}
		return v, func() tea.Msg { return LoggedIn{} }

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return ShowLogin{} }

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 6
			v.updateFocus()
			return v, nil

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 5) % 6
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Right), msg.String() == " ":
			if v.focusIdx == 4 {
				v.toggleRole()
				return v, nil
			}

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < 4 {
				v.focusIdx++
				v.updateFocus()
				return v, nil
			}
			if v.focusIdx == 4 {
				v.toggleRole()
				return v, nil
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.givenName, cmd = v.givenName.Update(msg)
	case 1:
		v.familyName, cmd = v.familyName.Update(msg)
	case 2:
		v.email, cmd = v.email.Update(msg)
	case 3:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *RegisterView) toggleRole() {
	if v.role == models.RoleEmployee {
		v.role = models.RoleManager
	} else {
		v.role = models.RoleEmployee
	}
}

func (v *RegisterView) updateFocus() {
	v.givenName.Blur()
	v.familyName.Blur()
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.givenName.Focus()
	case 1:
		v.familyName.Focus()
	case 2:
		v.email.Focus()
	case 3:
		v.password.Focus()
	}
}

func (v *RegisterView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := styles.Clamp(contentWidth-6, 20, 50)

	fieldStyle := func(i int) lipgloss.Style {
		if v.focusIdx == i {
			return s.InputFocused
		}
		return s.Input
	}

	roleStyle := s.Button
	if v.focusIdx == 4 {
		roleStyle = s.ButtonFocused
	}
	btnStyle := s.Button
	if v.focusIdx == 5 {
		btnStyle = s.ButtonFocused
	}

	btnLabel := " Create Account "
	if v.busy {
		btnLabel = " Creating... "
	}

	parts := []string{
		s.Title.Render("Create your account"),
		"",
		"Given name:",
		fieldStyle(0).Width(inputWidth).Render(v.givenName.View()),
		"Family name:",
		fieldStyle(1).Width(inputWidth).Render(v.familyName.View()),
		"Email:",
		fieldStyle(2).Width(inputWidth).Render(v.email.View()),
		"Password:",
		fieldStyle(3).Width(inputWidth).Render(v.password.View()),
		"",
		"Role: " + roleStyle.Render(string(v.role)),
		"",
		btnStyle.Render(btnLabel),
	}
	if v.errMsg != "" {
		parts = append(parts, "", s.ErrorText.Render(v.errMsg))
	}
	parts = append(parts, "",
		s.TitleMuted.Render("Tab: next • Space: toggle role • ↵: create • Esc: back to login"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, parts...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
