package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"keyconsole/internal/action"
	"keyconsole/internal/api"
	"keyconsole/internal/timer"
	"keyconsole/internal/toast"
)

// Options wires the app to its collaborators.
type Options struct {
	Backend   Backend
	Submitter *action.Submitter
	Toasts    *toast.Store    // defaults to a store on Scheduler
	Scheduler timer.Scheduler // defaults to timer.Real()
	Logger    *zap.Logger     // defaults to zap.NewNop()
	BaseURL   string          // shown on the login page
	Email     string          // prefills the login form
	Token     string          // skips login when set
	OnLogin   func(*api.Credentials)
}

// AppModel is the root model. It switches between the login, dashboard and
// project pages and owns the shared UI resources: key listeners, scroll
// lock, open dialogs and toasts.
type AppModel struct {
	Mode       AppMode
	Login      *LoginView
	Dashboard  *DashboardView
	Project    *ProjectView
	KeyHandler *KeyHandler
	Keys       *KeyListeners
	Scroll     *ScrollLock
	Overlays   OverlayStack
	Toasts     *toast.Store

	backend   Backend
	submitter *action.Submitter
	sched     timer.Scheduler
	logger    *zap.Logger
	baseURL   string
	onLogin   func(*api.Credentials)

	token string
	user  *api.User

	// inflight holds the shells whose submission has not come back.
	inflight map[*ModalShell]bool

	send          func(tea.Msg)
	width, height int
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// NewAppModel creates the root application model.
func NewAppModel(opts Options) *AppModel {
	if opts.Scheduler == nil {
		opts.Scheduler = timer.Real()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Toasts == nil {
		opts.Toasts = toast.NewStore(toast.WithScheduler(opts.Scheduler))
	}
	a := &AppModel{
		Mode:       ModeLogin,
		Login:      NewLoginView(opts.Email, opts.BaseURL),
		Dashboard:  NewDashboardView(),
		KeyHandler: NewKeyHandler(newRegistry()),
		Keys:       &KeyListeners{},
		Scroll:     &ScrollLock{},
		Toasts:     opts.Toasts,
		backend:    opts.Backend,
		submitter:  opts.Submitter,
		sched:      opts.Scheduler,
		logger:     opts.Logger,
		baseURL:    opts.BaseURL,
		onLogin:    opts.OnLogin,
		token:      opts.Token,
		inflight:   make(map[*ModalShell]bool),
	}
	if a.token != "" {
		a.Mode = ModeDashboard
	}
	a.Toasts.SetOnChange(a.repaint)
	return a
}

// newRegistry binds the console's keys.
func newRegistry() *KeybindRegistry {
	pages := []AppMode{ModeDashboard, ModeProject}
	project := []AppMode{ModeProject}
	msg := func(m tea.Msg) tea.Cmd { return func() tea.Msg { return m } }

	reg := NewKeybindRegistry()
	reg.BindWithDescForMode("q", tea.Quit, "Quit", pages)
	reg.BindWithDescForMode("r", msg(RefreshMsg{}), "Reload", pages)
	reg.BindWithDescForMode("x", msg(DismissToastMsg{}), "Dismiss toast", pages)
	reg.BindWithDescForMode("n", msg(ShowCreateKeyMsg{}), "New key", project)
	reg.BindWithDescForMode("d", msg(ShowDeleteSelectedMsg{}), "Delete selected", project)
	reg.BindWithDescForMode("e", msg(ShowEditProjectMsg{}), "Edit project", project)
	reg.BindWithDescForMode("D", msg(ShowDeleteProjectMsg{}), "Delete project", project)
	reg.BindWithDescForMode("c", msg(CopyKeyMsg{}), "Copy key", project)
	reg.BindWithDescForMode("v", msg(ToggleKeyMsg{}), "Reveal key", project)

	reg.BindWithDescForMode("SPC q", tea.Quit, "Quit", pages)
	reg.BindWithDescForMode("SPC k c", msg(ShowCreateKeyMsg{}), "Create key", project)
	reg.BindWithDescForMode("SPC k d", msg(ShowDeleteKeyMsg{}), "Delete key", project)
	reg.BindWithDescForMode("SPC p e", msg(ShowEditProjectMsg{}), "Edit project", project)
	reg.BindWithDescForMode("SPC p d", msg(ShowDeleteProjectMsg{}), "Delete project", project)
	reg.BindWithDescForMode("SPC p s", msg(ShowProjectSwitcherMsg{}), "Switch project", pages)
	reg.BindWithDescForMode("SPC u r", msg(ShowRemoveUserMsg{}), "Remove user", project)
	return reg
}

// SetSender lets timer-driven changes (toast expiry, copied indicator)
// request a repaint. Pass tea.Program.Send.
func (a *AppModel) SetSender(send func(tea.Msg)) {
	a.send = send
}

// repaint runs off the event loop: Program.Send must not be called from
// inside Update.
func (a *AppModel) repaint() {
	if send := a.send; send != nil {
		go send(RepaintMsg{})
	}
}

// Token returns the session token.
func (a *AppModel) Token() string {
	return a.token
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (a *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: a}
}

// Init implements tea.Model.
func (a *appModelAdapter) Init() tea.Cmd {
	if a.Mode == ModeDashboard {
		return a.loadDashboard()
	}
	return a.Login.Init()
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.Dashboard.Update(msg)
		if a.Project != nil {
			a.Project.Update(msg)
		}
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.MouseMsg:
		return a.handleMouse(msg)
	case RepaintMsg:
		return a, nil
	case spinner.TickMsg:
		_, cmd := a.Dashboard.Update(msg)
		return a, cmd

	case LoginSubmitMsg:
		return a, loginCmd(a.backend, msg.Email, msg.Password)
	case LoggedInMsg:
		return a.handleLoggedIn(msg)
	case LoginFailedMsg:
		a.Login.SetError(msg.Err.Error())
		return a, nil

	case ProjectsLoadedMsg:
		return a.handleProjectsLoaded(msg)
	case ProjectsEnrichedMsg:
		return a.handleProjectsEnriched(msg)
	case SelectProjectMsg:
		return a.handleSelectProject(msg)
	case ProjectLoadedMsg:
		return a.handleProjectLoaded(msg)
	case BackMsg:
		return a.handleBack()
	case RefreshMsg:
		return a.handleRefresh()

	case ShowCreateKeyMsg, ShowDeleteKeyMsg, ShowEditProjectMsg, ShowDeleteProjectMsg,
		ShowRemoveUserMsg, ShowDeleteSelectedMsg, ShowProjectSwitcherMsg:
		return a.handleShowDialog(msg)
	case SubmitFormMsg:
		return a.handleSubmitForm(msg)
	case SubmissionDoneMsg:
		return a.handleSubmissionDone(msg)

	case CopyKeyMsg:
		if c := a.selectedCard(); c != nil {
			return a, c.Copy()
		}
		return a, nil
	case ToggleKeyMsg:
		if c := a.selectedCard(); c != nil {
			c.ToggleShow()
		}
		return a, nil
	case DismissToastMsg:
		if ts := a.Toasts.List(); len(ts) > 0 {
			a.Toasts.Close(ts[len(ts)-1].ID)
		}
		return a, nil
	}

	if cmd, ok := a.Overlays.UpdateTop(msg); ok {
		return a, cmd
	}
	return a, a.updateCurrentView(msg)
}

func (a *appModelAdapter) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	// Global listeners first: an open dialog's Escape.
	if a.Keys.Dispatch(msg) {
		return a, nil
	}
	if cmd, ok := a.Overlays.UpdateTop(msg); ok {
		return a, cmd
	}
	if a.Mode == ModeLogin {
		return a, a.updateCurrentView(msg)
	}
	if consumed, cmd := a.KeyHandler.Handle(msg, a.Mode); consumed {
		return a, cmd
	}
	switch {
	case a.Mode == ModeDashboard && msg.String() == "enter":
		if p, ok := a.Dashboard.Selected(); ok {
			id := p.ProjectID
			return a, func() tea.Msg { return SelectProjectMsg{ProjectID: id} }
		}
		return a, nil
	case a.Mode == ModeProject && msg.String() == "esc":
		return a.handleBack()
	}
	return a, a.updateCurrentView(msg)
}

func (a *appModelAdapter) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if top, ok := a.Overlays.Peek(); ok && top.Shell().HandleMouse(msg) {
		return a, nil
	}
	// Wheel events reach the page even under a dialog; the page honors the
	// scroll lock.
	if a.Mode == ModeProject && a.Project != nil {
		_, cmd := a.Project.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *appModelAdapter) updateCurrentView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.Mode {
	case ModeLogin:
		_, cmd = a.Login.Update(msg)
	case ModeDashboard:
		_, cmd = a.Dashboard.Update(msg)
	case ModeProject:
		if a.Project != nil {
			_, cmd = a.Project.Update(msg)
		}
	}
	return cmd
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	width, height := a.width, a.height
	if width == 0 {
		width, height = 80, 24
	}
	toasts := RenderToasts(a.Toasts.List(), width)

	if top, ok := a.Overlays.Peek(); ok {
		screen := top.Shell().Place(top.View(), width, height)
		return overlayBottom(screen, toasts, height)
	}

	var page string
	switch a.Mode {
	case ModeLogin:
		page = a.Login.View()
	case ModeDashboard:
		page = a.Dashboard.View()
	case ModeProject:
		if a.Project != nil {
			page = a.Project.View()
		}
	}
	if help := RenderKeybindHelp(a.KeyHandler, a.Mode); help != "" {
		page = strings.TrimRight(page, "\n") + "\n" + help
	}
	return overlayBottom(page, toasts, height)
}
