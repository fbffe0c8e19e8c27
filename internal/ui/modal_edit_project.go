package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"keyconsole/internal/action"
	"keyconsole/internal/api"
)

// EditProjectDialog edits a project's name and description.
// Tab switches field; Enter saves.
type EditProjectDialog struct {
	actionDialog
	name        textinput.Model
	description textinput.Model
	focus       int // 0 name, 1 description
}

// Ensure EditProjectDialog implements Dialog.
var _ Dialog = (*EditProjectDialog)(nil)

// NewEditProjectDialog creates the edit dialog prefilled from p.
func NewEditProjectDialog(shell *ModalShell, p api.Project) *EditProjectDialog {
	name := textinput.New()
	name.Placeholder = "Project name"
	name.Prompt = "Name        "
	name.Width = 40
	name.CharLimit = 128
	name.SetValue(p.Name)
	name.Focus()

	desc := textinput.New()
	desc.Placeholder = "Optional"
	desc.Prompt = "Description "
	desc.Width = 40
	desc.CharLimit = 512
	desc.SetValue(p.Description)

	return &EditProjectDialog{
		actionDialog: newActionDialog(shell, action.UpdateProject, "Save", "Saving…", false),
		name:         name,
		description:  desc,
	}
}

// Values returns the trimmed name and description.
func (m *EditProjectDialog) Values() (name, description string) {
	return strings.TrimSpace(m.name.Value()), strings.TrimSpace(m.description.Value())
}

// SetValues replaces both fields.
func (m *EditProjectDialog) SetValues(name, description string) {
	m.name.SetValue(name)
	m.description.SetValue(description)
}

// CanSubmit reports whether the name is non-empty and nothing is pending.
func (m *EditProjectDialog) CanSubmit() bool {
	name, _ := m.Values()
	return !m.submitting && name != ""
}

// Init implements View.
func (m *EditProjectDialog) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *EditProjectDialog) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.toggleFocus()
			return m, nil
		case "enter":
			if !m.CanSubmit() {
				return m, nil
			}
			name, desc := m.Values()
			return m, m.submit(action.NewForm(action.UpdateProject,
				action.FieldName, name,
				action.FieldDescription, desc,
			))
		}
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m *EditProjectDialog) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.name.Blur()
		m.description.Focus()
		return
	}
	m.focus = 0
	m.description.Blur()
	m.name.Focus()
}

// View implements View.
func (m *EditProjectDialog) View() string {
	return m.shell.Frame(DialogParts{
		Title:       "Edit project",
		Description: "Tab switches field.",
		Body:        m.name.View() + "\n" + m.description.View(),
		Footer:      m.footer(m.CanSubmit()),
		Error:       m.err,
		MinWidth:    56,
	})
}
