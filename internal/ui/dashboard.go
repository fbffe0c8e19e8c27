package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"keyconsole/internal/api"
)

// projectItem implements list.Item for api.Project.
type projectItem struct {
	api.Project
}

func (p projectItem) FilterValue() string { return p.Name }
func (p projectItem) Title() string {
	return fmt.Sprintf("%s  %s  %s, %s", p.Name, Styles.Muted.Render(p.ProjectID),
		plural(len(p.APIKeys), "key"), plural(len(p.Members), "member"))
}
func (p projectItem) Description() string { return p.Project.Description }

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// DashboardView lists the projects the user belongs to.
type DashboardView struct {
	list     list.Model
	Projects []api.Project
	User     *api.User
	spinner  spinner.Model
	loading  bool
	err      string
}

// Ensure DashboardView implements View.
var _ View = (*DashboardView)(nil)

// NewDashboardView creates an empty dashboard. Projects arrive via
// ProjectsLoadedMsg and ProjectsEnrichedMsg.
func NewDashboardView() *DashboardView {
	l := list.New(nil, NewCompactListDelegate(), 0, 0)
	l.Title = "Projects"
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = Styles.Status

	return &DashboardView{list: l, spinner: s}
}

// Selected returns the highlighted project.
func (d *DashboardView) Selected() (api.Project, bool) {
	i := d.list.Index()
	if i < 0 || i >= len(d.Projects) {
		return api.Project{}, false
	}
	return d.Projects[i], true
}

// SetProjects replaces the list, keeping the selection on the same project
// when it is still present.
func (d *DashboardView) SetProjects(ps []api.Project) {
	prev, hadPrev := d.Selected()
	d.Projects = ps
	items := make([]list.Item, len(ps))
	sel := 0
	for i, p := range ps {
		items[i] = projectItem{Project: p}
		if hadPrev && p.ProjectID == prev.ProjectID {
			sel = i
		}
	}
	d.list.SetItems(items)
	d.list.Select(sel)
}

// SetError shows a load error.
func (d *DashboardView) SetError(err string) {
	d.err = err
}

// SetLoading sets the loading state and returns a command to start the spinner.
func (d *DashboardView) SetLoading(loading bool) tea.Cmd {
	d.loading = loading
	if loading {
		return d.spinner.Tick
	}
	return nil
}

// Loading reports whether a load is in flight.
func (d *DashboardView) Loading() bool {
	return d.loading
}

// Init implements View.
func (d *DashboardView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (d *DashboardView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.list.SetWidth(msg.Width)
		d.list.SetHeight(max(1, msg.Height-5)) // header, hint, help bar
		return d, nil
	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	}
	// list.Model handles j/k/g/G; Enter is handled by the app.
	var cmd tea.Cmd
	d.list, cmd = d.list.Update(msg)
	return d, cmd
}

// View implements View.
func (d *DashboardView) View() string {
	// Default dimensions before the first WindowSizeMsg (tests)
	if d.list.Width() == 0 {
		d.list.SetWidth(80)
	}
	if d.list.Height() == 0 {
		d.list.SetHeight(20)
	}

	var b strings.Builder
	title := Styles.Title.Render(fmt.Sprintf("Projects (%d)", len(d.Projects)))
	if d.loading {
		title += " " + d.spinner.View()
	}
	if d.User != nil {
		title += "  " + Styles.Muted.Render("signed in as "+d.User.Email)
	}
	b.WriteString(title + "\n")
	b.WriteString(Styles.Hint.Render("Enter: open  r: reload  [SPC] for commands") + "\n\n")
	switch {
	case d.err != "":
		b.WriteString(Styles.Error.Render(d.err))
	case len(d.Projects) == 0 && !d.loading:
		b.WriteString(Styles.Empty.Render("No projects yet."))
	default:
		b.WriteString(d.list.View())
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(b.String())
}
