package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"keyconsole/internal/api"
	"keyconsole/internal/timer"
	"keyconsole/internal/ui/textutil"
)

// ProjectView shows one project: header, API key cards and members.
// Tab moves focus between the keys and members panels; j/k move within the
// focused panel. The body scrolls in a viewport unless the page scroll lock
// is held.
type ProjectView struct {
	ProjectID string
	Project   *api.Project

	cards     []*APIKeyCard
	keyIdx    int
	memberIdx int
	focus     *FocusManager

	viewport viewport.Model
	scroll   *ScrollLock
	sched    timer.Scheduler
	notify   func()

	loading bool
	err     string
	width   int
	height  int
}

// Ensure ProjectView implements View.
var _ View = (*ProjectView)(nil)

// NewProjectView creates a view for projectID; the snapshot arrives via SetProject.
func NewProjectView(projectID string, scroll *ScrollLock, sched timer.Scheduler, notify func()) *ProjectView {
	vp := viewport.New(80, 20)
	return &ProjectView{
		ProjectID: projectID,
		focus:     NewFocusManager(PanelKeys, PanelMembers),
		viewport:  vp,
		scroll:    scroll,
		sched:     sched,
		notify:    notify,
		loading:   true,
	}
}

// SetProject replaces the snapshot. Cards for keys that are still listed
// keep their reveal state; the rest are disposed.
func (p *ProjectView) SetProject(proj *api.Project) {
	old := make(map[string]*APIKeyCard, len(p.cards))
	for _, c := range p.cards {
		old[c.Key().Identifier()] = c
	}
	p.Project = proj
	p.loading = false
	p.err = ""
	p.cards = p.cards[:0]
	for _, k := range proj.APIKeys {
		if c, ok := old[k.Identifier()]; ok {
			delete(old, k.Identifier())
			p.cards = append(p.cards, c)
			continue
		}
		p.cards = append(p.cards, NewAPIKeyCard(k, p.sched, p.notify))
	}
	for _, c := range old {
		c.Dispose()
	}
	p.keyIdx = clamp(p.keyIdx, len(p.cards))
	p.memberIdx = clamp(p.memberIdx, len(proj.Members))
}

// SetError shows a load error.
func (p *ProjectView) SetError(err string) {
	p.loading = false
	p.err = err
}

// SetLoading marks a reload in flight.
func (p *ProjectView) SetLoading() {
	p.loading = true
}

// Dispose cancels every card timer.
func (p *ProjectView) Dispose() {
	for _, c := range p.cards {
		c.Dispose()
	}
}

// Focused returns the focused panel ID.
func (p *ProjectView) Focused() string {
	return p.focus.Current
}

// Cards returns the key cards in display order.
func (p *ProjectView) Cards() []*APIKeyCard {
	return p.cards
}

// SelectedCard returns the selected key card, or nil.
func (p *ProjectView) SelectedCard() *APIKeyCard {
	if p.keyIdx < 0 || p.keyIdx >= len(p.cards) {
		return nil
	}
	return p.cards[p.keyIdx]
}

// SelectedMember returns the selected member.
func (p *ProjectView) SelectedMember() (api.User, bool) {
	if p.Project == nil || p.memberIdx < 0 || p.memberIdx >= len(p.Project.Members) {
		return api.User{}, false
	}
	return p.Project.Members[p.memberIdx], true
}

// Init implements View.
func (p *ProjectView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (p *ProjectView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		p.viewport.Width = msg.Width
		p.viewport.Height = max(1, msg.Height-6) // header, hints, help bar
		return p, nil
	case tea.MouseMsg:
		return p, p.scrollBy(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			p.focus.Next()
		case "shift+tab":
			p.focus.Prev()
		case "j", "down":
			p.move(1)
		case "k", "up":
			p.move(-1)
		case "pgup", "pgdown":
			return p, p.scrollBy(msg)
		}
	}
	return p, nil
}

// scrollBy forwards a scroll event to the viewport unless the page is locked.
func (p *ProjectView) scrollBy(msg tea.Msg) tea.Cmd {
	if p.scroll != nil && p.scroll.Locked() {
		return nil
	}
	p.viewport.SetContent(p.body())
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

// ScrollOffset returns the viewport's vertical offset.
func (p *ProjectView) ScrollOffset() int {
	return p.viewport.YOffset
}

func (p *ProjectView) move(delta int) {
	switch p.focus.Current {
	case PanelKeys:
		p.keyIdx = clamp(p.keyIdx+delta, len(p.cards))
	case PanelMembers:
		if p.Project != nil {
			p.memberIdx = clamp(p.memberIdx+delta, len(p.Project.Members))
		}
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// View implements View.
func (p *ProjectView) View() string {
	var b strings.Builder
	switch {
	case p.Project == nil && p.err != "":
		b.WriteString(Styles.Error.Render(p.err))
		return b.String()
	case p.Project == nil:
		b.WriteString(Styles.Status.Render("Loading " + p.ProjectID + "…"))
		return b.String()
	}

	title := Styles.Title.Render(p.Project.Name) + "  " + Styles.Muted.Render(p.Project.ProjectID)
	if p.loading {
		title += "  " + Styles.Status.Render("refreshing…")
	}
	b.WriteString(title + "\n")
	if p.err != "" {
		b.WriteString(Styles.Error.Render(p.err) + "\n")
	} else if p.Project.Description != "" {
		b.WriteString(Styles.Normal.Render(p.Project.Description) + "\n")
	} else {
		b.WriteString(Styles.Empty.Render("No description") + "\n")
	}
	b.WriteString("\n")

	p.viewport.SetContent(p.body())
	b.WriteString(p.viewport.View())
	b.WriteString("\n" + Styles.Hint.Render("n: new key  d: delete  e: edit  D: delete project  c: copy  v: reveal  tab: switch panel  esc: back"))
	return lipgloss.NewStyle().PaddingLeft(1).Render(b.String())
}

// body renders the scrollable panels.
func (p *ProjectView) body() string {
	var b strings.Builder

	b.WriteString(panelHeader(fmt.Sprintf("API keys (%d)", len(p.cards)), p.focus.Is(PanelKeys)) + "\n")
	if len(p.cards) == 0 {
		b.WriteString(Styles.Empty.Render("No API keys. Press n to create one.") + "\n")
	}
	for i, c := range p.cards {
		b.WriteString(c.View(p.focus.Is(PanelKeys) && i == p.keyIdx) + "\n")
	}
	b.WriteString("\n")

	members := p.Project.Members
	b.WriteString(panelHeader(fmt.Sprintf("Members (%d)", len(members)), p.focus.Is(PanelMembers)) + "\n")
	if len(members) == 0 {
		b.WriteString(Styles.Empty.Render("No members.") + "\n")
	}
	for i, u := range members {
		row := textutil.Columns([]string{u.DisplayName(), u.Email, u.Role}, []int{24, 32})
		if p.focus.Is(PanelMembers) && i == p.memberIdx {
			b.WriteString(Styles.Selected.Render("› "+row) + "\n")
		} else {
			b.WriteString(Styles.Normal.Render("  "+row) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func panelHeader(title string, focused bool) string {
	if focused {
		return Styles.Section.Render("▸ " + title)
	}
	return Styles.Muted.Render("  " + title)
}
