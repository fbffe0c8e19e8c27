package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"keyconsole/internal/api"
)

// ProjectSwitcherDialog picks a project to open.
type ProjectSwitcherDialog struct {
	shell *ModalShell
	list  list.Model
}

type projectSwitcherItem struct {
	id, name string
}

func (p projectSwitcherItem) FilterValue() string { return p.name + " " + p.id }
func (p projectSwitcherItem) Title() string       { return p.name + "  " + Styles.Muted.Render(p.id) }
func (p projectSwitcherItem) Description() string { return "" }

// Ensure ProjectSwitcherDialog implements Dialog.
var _ Dialog = (*ProjectSwitcherDialog)(nil)

// NewProjectSwitcherDialog lists projects for switching.
func NewProjectSwitcherDialog(shell *ModalShell, projects []api.Project) *ProjectSwitcherDialog {
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectSwitcherItem{id: p.ProjectID, name: p.Name}
	}
	l := list.New(items, NewCompactListDelegate(), 44, 12)
	l.Title = "Switch project"
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return &ProjectSwitcherDialog{shell: shell, list: l}
}

// Shell returns the dialog's modal shell.
func (m *ProjectSwitcherDialog) Shell() *ModalShell { return m.shell }

// SetError is a no-op: the switcher submits nothing.
func (m *ProjectSwitcherDialog) SetError(string) {}

// Dispose releases the shell.
func (m *ProjectSwitcherDialog) Dispose() { m.shell.Dispose() }

// Init implements View.
func (m *ProjectSwitcherDialog) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *ProjectSwitcherDialog) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter && m.list.FilterState() != list.Filtering {
		if sel, ok := m.list.SelectedItem().(projectSwitcherItem); ok {
			id := sel.id
			return m, func() tea.Msg { return SelectProjectMsg{ProjectID: id} }
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements View.
func (m *ProjectSwitcherDialog) View() string {
	return m.shell.Frame(DialogParts{
		Title:  "Switch project",
		Body:   m.list.View(),
		Footer: Styles.Hint.Render("Enter: open  /: filter  Esc: cancel"),
	})
}
