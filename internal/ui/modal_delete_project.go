package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"keyconsole/internal/action"
	"keyconsole/internal/api"
)

// DeleteProjectDialog requires the user to type the project id before the
// destructive action is enabled. The comparison is exact and case-sensitive.
type DeleteProjectDialog struct {
	actionDialog
	project api.Project
	input   textinput.Model
}

// Ensure DeleteProjectDialog implements Dialog.
var _ Dialog = (*DeleteProjectDialog)(nil)

// NewDeleteProjectDialog creates the delete confirmation for p.
func NewDeleteProjectDialog(shell *ModalShell, p api.Project) *DeleteProjectDialog {
	ti := textinput.New()
	ti.Placeholder = p.ProjectID
	ti.Prompt = "> "
	ti.Width = 40
	ti.CharLimit = 0 // unlimited
	ti.Focus()
	return &DeleteProjectDialog{
		actionDialog: newActionDialog(shell, action.DeleteProject, "Delete project", "Deleting…", true),
		project:      p,
		input:        ti,
	}
}

// Confirmation returns the typed text.
func (m *DeleteProjectDialog) Confirmation() string {
	return m.input.Value()
}

// SetConfirmation replaces the typed text.
func (m *DeleteProjectDialog) SetConfirmation(s string) {
	m.input.SetValue(s)
}

// CanSubmit reports whether the typed confirmation matches the project id
// and no submission is pending.
func (m *DeleteProjectDialog) CanSubmit() bool {
	return !m.submitting && m.input.Value() == m.project.ProjectID
}

// Init implements View.
func (m *DeleteProjectDialog) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *DeleteProjectDialog) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		if !m.CanSubmit() {
			return m, nil
		}
		return m, m.submit(action.NewForm(action.DeleteProject))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements View.
func (m *DeleteProjectDialog) View() string {
	body := Styles.Details.Render("This permanently deletes "+m.project.Name+", its API keys and memberships.") +
		"\n\n" + Styles.Normal.Render("Type ") + Styles.Selected.Render(m.project.ProjectID) +
		Styles.Normal.Render(" to confirm:") + "\n" + m.input.View()
	return m.shell.Frame(DialogParts{
		Title:    "Delete project?",
		Body:     body,
		Footer:   m.footer(m.CanSubmit()),
		Error:    m.err,
		Danger:   true,
		MinWidth: 48,
	})
}
