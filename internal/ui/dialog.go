package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"keyconsole/internal/action"
)

// SubmitFormMsg carries a dialog's mutation to the app. Dialogs never run
// the mutation themselves.
type SubmitFormMsg struct {
	Form action.Form
	// Origin is the shell of the submitting dialog. Results are routed back
	// to it alone.
	Origin *ModalShell
}

// actionDialog is the state shared by every action dialog: the shell, the
// caller-supplied error and the local submitting flag.
type actionDialog struct {
	shell      *ModalShell
	kind       action.Kind
	err        string
	submitting bool

	label     string // trigger label, e.g. "Delete"
	busyLabel string // while submitting, e.g. "Deleting…"
	danger    bool
}

func newActionDialog(shell *ModalShell, kind action.Kind, label, busyLabel string, danger bool) actionDialog {
	return actionDialog{shell: shell, kind: kind, label: label, busyLabel: busyLabel, danger: danger}
}

// Shell returns the dialog's modal shell.
func (d *actionDialog) Shell() *ModalShell { return d.shell }

// Action returns the discriminator the dialog submits.
func (d *actionDialog) Action() action.Kind { return d.kind }

// Error returns the error shown in the banner.
func (d *actionDialog) Error() string { return d.err }

// Submitting reports whether submission has been requested and no answer
// has come back yet.
func (d *actionDialog) Submitting() bool { return d.submitting }

// SetError shows msg and clears submitting so the user can retry.
func (d *actionDialog) SetError(msg string) {
	d.err = msg
	d.submitting = false
}

// Dispose releases the shell.
func (d *actionDialog) Dispose() {
	d.shell.Dispose()
}

// submit emits f once. While submitting, further requests are ignored.
func (d *actionDialog) submit(f action.Form) tea.Cmd {
	if d.submitting {
		return nil
	}
	d.submitting = true
	origin := d.shell
	return func() tea.Msg { return SubmitFormMsg{Form: f, Origin: origin} }
}

// footer renders the trigger, relabelled and disabled while submitting or
// when enabled is false, followed by key hints.
func (d *actionDialog) footer(enabled bool) string {
	label := d.label
	style := Styles.Button
	if d.danger {
		style = Styles.ButtonDanger
	}
	if d.submitting {
		label = d.busyLabel
	}
	if d.submitting || !enabled {
		style = Styles.ButtonDisabled
	}
	return style.Render(label) + "  " + Styles.Hint.Render("Enter: "+strings.ToLower(d.label)+"  Esc: cancel")
}
