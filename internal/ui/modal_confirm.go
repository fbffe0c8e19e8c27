package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"keyconsole/internal/action"
	"keyconsole/internal/api"
)

// ConfirmDialog is an action dialog without inputs: Enter submits its form.
// Create API Key, Delete API Key and Remove User are ConfirmDialogs.
type ConfirmDialog struct {
	actionDialog
	Title   string
	Label   string
	Details string // optional warning line
	form    action.Form
}

// Ensure ConfirmDialog implements Dialog.
var _ Dialog = (*ConfirmDialog)(nil)

// NewCreateAPIKeyDialog asks for confirmation before generating a key for p.
func NewCreateAPIKeyDialog(shell *ModalShell, p api.Project) *ConfirmDialog {
	return &ConfirmDialog{
		actionDialog: newActionDialog(shell, action.CreateAPIKey, "Create key", "Creating…", false),
		Title:        "Create API key",
		Label:        fmt.Sprintf("Generate a new API key for %s.", p.Name),
		Details:      "The full key is shown once, right after creation.",
		form:         action.NewForm(action.CreateAPIKey),
	}
}

// NewDeleteAPIKeyDialog asks for confirmation before revoking k.
func NewDeleteAPIKeyDialog(shell *ModalShell, k api.APIKey) *ConfirmDialog {
	return &ConfirmDialog{
		actionDialog: newActionDialog(shell, action.DeleteAPIKey, "Delete", "Deleting…", true),
		Title:        "Revoke API key?",
		Label:        "Key: " + k.Masked(),
		Details:      "Applications using this key will stop working immediately.",
		form:         action.NewForm(action.DeleteAPIKey, action.FieldAPIKeyID, k.Identifier()),
	}
}

// NewRemoveUserDialog asks for confirmation before removing u from the project.
func NewRemoveUserDialog(shell *ModalShell, u api.User) *ConfirmDialog {
	label := "User: " + u.DisplayName()
	if u.Name != "" {
		label += " <" + u.Email + ">"
	}
	return &ConfirmDialog{
		actionDialog: newActionDialog(shell, action.RemoveUser, "Remove", "Removing…", true),
		Title:        "Remove member?",
		Label:        label,
		Details:      "They lose access to the project and its API keys.",
		form:         action.NewForm(action.RemoveUser, action.FieldUserID, u.ID),
	}
}

// Form returns the form the dialog submits.
func (m *ConfirmDialog) Form() action.Form {
	return m.form
}

// CanSubmit reports whether the trigger is enabled.
func (m *ConfirmDialog) CanSubmit() bool {
	return !m.submitting
}

// Init implements View.
func (m *ConfirmDialog) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *ConfirmDialog) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter", "y":
			return m, m.submit(m.form)
		}
	}
	return m, nil
}

// View implements View.
func (m *ConfirmDialog) View() string {
	body := Styles.Normal.Render(m.Label)
	if m.Details != "" {
		body += "\n" + Styles.Details.Render(m.Details)
	}
	return m.shell.Frame(DialogParts{
		Title:  m.Title,
		Body:   body,
		Footer: m.footer(m.CanSubmit()),
		Error:  m.err,
		Danger: m.danger,
	})
}
