package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"keyconsole/internal/api"
	"keyconsole/internal/timer"
)

// NewAPIKeyDialog shows a freshly created key in full, once.
type NewAPIKeyDialog struct {
	shell *ModalShell
	card  *APIKeyCard
}

// Ensure NewAPIKeyDialog implements Dialog.
var _ Dialog = (*NewAPIKeyDialog)(nil)

// NewNewAPIKeyDialog creates the dialog with the card revealed.
func NewNewAPIKeyDialog(shell *ModalShell, k api.APIKey, sched timer.Scheduler, notify func()) *NewAPIKeyDialog {
	card := NewAPIKeyCard(k, sched, notify)
	card.ToggleShow()
	return &NewAPIKeyDialog{shell: shell, card: card}
}

// Shell returns the dialog's modal shell.
func (m *NewAPIKeyDialog) Shell() *ModalShell { return m.shell }

// Card returns the key card.
func (m *NewAPIKeyDialog) Card() *APIKeyCard { return m.card }

// SetError is a no-op: the dialog submits nothing.
func (m *NewAPIKeyDialog) SetError(string) {}

// Dispose releases the shell and the card's timer.
func (m *NewAPIKeyDialog) Dispose() {
	m.card.Dispose()
	m.shell.Dispose()
}

// Init implements View.
func (m *NewAPIKeyDialog) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *NewAPIKeyDialog) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "c":
			return m, m.card.Copy()
		case "v":
			m.card.ToggleShow()
		case "enter":
			m.shell.requestClose()
		}
	}
	return m, nil
}

// View implements View.
func (m *NewAPIKeyDialog) View() string {
	return m.shell.Frame(DialogParts{
		Title:       "API key created",
		Description: "Copy it now. You will not be able to see it again.",
		Body:        m.card.View(true),
		Footer:      Styles.Button.Render("Done") + "  " + Styles.Hint.Render("c: copy  v: hide/show  Enter: done"),
		MinWidth:    48,
	})
}
