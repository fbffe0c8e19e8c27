package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginView collects email and password.
type LoginView struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	err      string
	busy     bool
	baseURL  string
}

// Ensure LoginView implements View.
var _ View = (*LoginView)(nil)

// NewLoginView creates the login page, prefilled with email.
func NewLoginView(email, baseURL string) *LoginView {
	e := textinput.New()
	e.Placeholder = "you@example.com"
	e.Prompt = "Email    "
	e.Width = 40
	e.SetValue(email)

	p := textinput.New()
	p.Placeholder = "password"
	p.Prompt = "Password "
	p.Width = 40
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'

	v := &LoginView{email: e, password: p, baseURL: baseURL}
	if email != "" {
		v.focus = 1
		v.password.Focus()
	} else {
		v.email.Focus()
	}
	return v
}

// SetError shows err and re-enables the form.
func (v *LoginView) SetError(err string) {
	v.err = err
	v.busy = false
	v.password.SetValue("")
}

// Error returns the error line.
func (v *LoginView) Error() string {
	return v.err
}

// Busy reports whether a login is in flight.
func (v *LoginView) Busy() bool {
	return v.busy
}

// Init implements View.
func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements View.
func (v *LoginView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			v.switchField()
			return v, nil
		case "enter":
			if v.busy {
				return v, nil
			}
			email := strings.TrimSpace(v.email.Value())
			if email == "" || v.password.Value() == "" {
				v.err = "Email and password are required"
				return v, nil
			}
			v.busy = true
			v.err = ""
			password := v.password.Value()
			return v, func() tea.Msg { return LoginSubmitMsg{Email: email, Password: password} }
		}
	}
	var cmd tea.Cmd
	if v.focus == 0 {
		v.email, cmd = v.email.Update(msg)
	} else {
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) switchField() {
	if v.focus == 0 {
		v.focus = 1
		v.email.Blur()
		v.password.Focus()
		return
	}
	v.focus = 0
	v.password.Blur()
	v.email.Focus()
}

// View implements View.
func (v *LoginView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("keyconsole") + "  " + Styles.Muted.Render(v.baseURL) + "\n\n")
	b.WriteString(v.email.View() + "\n")
	b.WriteString(v.password.View() + "\n\n")
	switch {
	case v.busy:
		b.WriteString(Styles.Status.Render("Signing in…") + "\n")
	case v.err != "":
		b.WriteString(Styles.Error.Render(v.err) + "\n")
	}
	b.WriteString(Styles.Hint.Render("Tab: switch field  Enter: sign in  ctrl+c: quit"))
	return Styles.BoxCompact.Padding(1, 2).Render(b.String())
}
