package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"keyconsole/internal/action"
	"keyconsole/internal/api"
)

// sessionExpired is shown on the login page after a 401.
const sessionExpired = "Session expired. Sign in again."

// handleLoggedIn stores the token and opens the dashboard.
func (a *appModelAdapter) handleLoggedIn(msg LoggedInMsg) (tea.Model, tea.Cmd) {
	a.token = msg.Credentials.Token
	u := msg.Credentials.User
	a.user = &u
	a.Dashboard.User = a.user
	if a.onLogin != nil {
		a.onLogin(msg.Credentials)
	}
	a.logger.Info("signed in", zap.String("email", u.Email))
	a.Mode = ModeDashboard
	a.Toasts.Success("Signed in as " + u.Email)
	return a, a.loadDashboard()
}

// expireSession drops the token and returns to the login page.
func (a *appModelAdapter) expireSession() (tea.Model, tea.Cmd) {
	a.logger.Info("session rejected by the platform")
	a.token = ""
	a.Overlays.Clear()
	a.leaveProject()
	a.Mode = ModeLogin
	a.Login.SetError(sessionExpired)
	return a, nil
}

func (a *appModelAdapter) loadDashboard() tea.Cmd {
	return tea.Batch(a.Dashboard.SetLoading(true), loadProjectsCmd(a.backend, a.token))
}

// handleProjectsLoaded shows the list and starts fetching details in parallel.
func (a *appModelAdapter) handleProjectsLoaded(msg ProjectsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if api.IsUnauthorized(msg.Err) {
			return a.expireSession()
		}
		a.Dashboard.SetLoading(false)
		a.Dashboard.SetError("Could not load projects: " + msg.Err.Error())
		return a, nil
	}
	a.Dashboard.SetError("")
	a.Dashboard.SetProjects(msg.Projects)
	return a, enrichProjectsCmd(a.backend, a.token, msg.Projects)
}

// handleProjectsEnriched replaces the list with full snapshots.
func (a *appModelAdapter) handleProjectsEnriched(msg ProjectsEnrichedMsg) (tea.Model, tea.Cmd) {
	a.Dashboard.SetLoading(false)
	if msg.Err != nil {
		if api.IsUnauthorized(msg.Err) {
			return a.expireSession()
		}
		a.logger.Warn("enrich projects", zap.Error(msg.Err))
		return a, nil
	}
	a.Dashboard.SetProjects(msg.Projects)
	if msg.User != nil {
		a.user = msg.User
		a.Dashboard.User = msg.User
	}
	return a, nil
}

// handleSelectProject switches to the project page.
func (a *appModelAdapter) handleSelectProject(msg SelectProjectMsg) (tea.Model, tea.Cmd) {
	a.Overlays.Clear()
	a.leaveProject()
	a.Mode = ModeProject
	a.Project = NewProjectView(msg.ProjectID, a.Scroll, a.sched, a.repaint)
	if a.width > 0 {
		a.Project.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
	return a, loadProjectCmd(a.backend, a.token, msg.ProjectID)
}

// handleProjectLoaded applies a snapshot if it is still for the open page.
func (a *appModelAdapter) handleProjectLoaded(msg ProjectLoadedMsg) (tea.Model, tea.Cmd) {
	if a.Project == nil || a.Project.ProjectID != msg.ProjectID {
		return a, nil
	}
	if msg.Err != nil {
		if api.IsUnauthorized(msg.Err) {
			return a.expireSession()
		}
		a.Project.SetError("Could not load project: " + msg.Err.Error())
		return a, nil
	}
	a.Project.SetProject(msg.Project)
	return a, nil
}

func (a *appModelAdapter) handleBack() (tea.Model, tea.Cmd) {
	a.leaveProject()
	a.Mode = ModeDashboard
	return a, a.loadDashboard()
}

// leaveProject disposes the project page.
func (a *appModelAdapter) leaveProject() {
	if a.Project != nil {
		a.Project.Dispose()
		a.Project = nil
	}
}

func (a *appModelAdapter) handleRefresh() (tea.Model, tea.Cmd) {
	switch a.Mode {
	case ModeDashboard:
		return a, a.loadDashboard()
	case ModeProject:
		if a.Project != nil {
			a.Project.SetLoading()
			return a, loadProjectCmd(a.backend, a.token, a.Project.ProjectID)
		}
	}
	return a, nil
}

func (a *appModelAdapter) selectedCard() *APIKeyCard {
	if a.Mode != ModeProject || a.Project == nil {
		return nil
	}
	return a.Project.SelectedCard()
}

// openDialog builds a dialog on a fresh shell whose close callback removes it.
func (a *AppModel) openDialog(build func(shell *ModalShell) Dialog) tea.Cmd {
	var d Dialog
	shell := NewModalShell(a.Keys, a.Scroll, func() { a.Overlays.Remove(d) })
	d = build(shell)
	a.Overlays.Push(d)
	return d.Init()
}

// handleShowDialog opens the dialog a Show*Msg asks for.
func (a *appModelAdapter) handleShowDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(ShowProjectSwitcherMsg); ok {
		projects := a.Dashboard.Projects
		return a, a.openDialog(func(s *ModalShell) Dialog { return NewProjectSwitcherDialog(s, projects) })
	}

	if a.Mode != ModeProject || a.Project == nil || a.Project.Project == nil {
		return a, nil
	}
	p := *a.Project.Project

	if _, ok := msg.(ShowDeleteSelectedMsg); ok {
		msg = ShowDeleteKeyMsg{}
		if a.Project.Focused() == PanelMembers {
			msg = ShowRemoveUserMsg{}
		}
	}

	switch msg.(type) {
	case ShowCreateKeyMsg:
		return a, a.openDialog(func(s *ModalShell) Dialog { return NewCreateAPIKeyDialog(s, p) })
	case ShowDeleteKeyMsg:
		c := a.Project.SelectedCard()
		if c == nil {
			a.Toasts.Error("No API key selected")
			return a, nil
		}
		k := c.Key()
		return a, a.openDialog(func(s *ModalShell) Dialog { return NewDeleteAPIKeyDialog(s, k) })
	case ShowEditProjectMsg:
		return a, a.openDialog(func(s *ModalShell) Dialog { return NewEditProjectDialog(s, p) })
	case ShowDeleteProjectMsg:
		return a, a.openDialog(func(s *ModalShell) Dialog { return NewDeleteProjectDialog(s, p) })
	case ShowRemoveUserMsg:
		u, ok := a.Project.SelectedMember()
		if !ok {
			a.Toasts.Error("No member selected")
			return a, nil
		}
		return a, a.openDialog(func(s *ModalShell) Dialog { return NewRemoveUserDialog(s, u) })
	}
	return a, nil
}

// handleSubmitForm hands a dialog's form to the submitter. A repeat from a
// dialog whose submission is still in flight is dropped. Another dialog
// sending an identical form joins the running submission.
func (a *appModelAdapter) handleSubmitForm(msg SubmitFormMsg) (tea.Model, tea.Cmd) {
	if a.Project == nil || a.submitter == nil {
		return a, nil
	}
	if a.inflight[msg.Origin] {
		a.logger.Debug("dropped duplicate submission", zap.Stringer("form", msg.Form))
		return a, nil
	}
	sub, err := a.submitter.Submit(context.Background(), a.token, a.Project.ProjectID, msg.Form)
	shared := errors.Is(err, action.ErrPending)
	if shared {
		a.logger.Debug("joined submission in flight", zap.Stringer("form", msg.Form))
	}
	a.inflight[msg.Origin] = true
	return a, waitSubmissionCmd(sub, msg.Origin, shared)
}

// dialogFor returns the open dialog built on shell, or nil once it closed.
func (a *AppModel) dialogFor(shell *ModalShell) Dialog {
	if shell == nil {
		return nil
	}
	for _, d := range a.Overlays.Stack {
		if d.Shell() == shell {
			return d
		}
	}
	return nil
}

var successMessages = map[action.Kind]string{
	action.CreateAPIKey:  "API key created",
	action.DeleteAPIKey:  "API key revoked",
	action.UpdateProject: "Project updated",
	action.DeleteProject: "Project deleted",
	action.RemoveUser:    "Member removed",
}

// handleSubmissionDone feeds an error back into the dialog that submitted,
// or on success closes it, reports a toast and reloads. When that dialog is
// gone the outcome is reported as a toast.
func (a *appModelAdapter) handleSubmissionDone(msg SubmissionDoneMsg) (tea.Model, tea.Cmd) {
	delete(a.inflight, msg.Origin)
	kind := msg.Form.Action
	d := a.dialogFor(msg.Origin)
	res := msg.Result

	if !res.OK() {
		if res.Error != "" && d != nil {
			d.SetError(res.Error)
			return a, nil
		}
		if !msg.Shared {
			a.Toasts.Error(res.Error)
		}
		return a, nil
	}

	if d != nil {
		a.Overlays.Remove(d)
	}
	if msg.Shared {
		return a, nil
	}
	a.Toasts.Success(successMessages[kind])

	if res.Redirect != "" {
		a.Overlays.Clear()
		a.leaveProject()
		a.Mode = ModeDashboard
		return a, a.loadDashboard()
	}
	if a.Project == nil || a.Project.ProjectID != msg.ProjectID {
		return a, nil
	}

	var cmd tea.Cmd
	if kind == action.CreateAPIKey && res.APIKey != nil {
		k := *res.APIKey
		cmd = a.openDialog(func(s *ModalShell) Dialog { return NewNewAPIKeyDialog(s, k, a.sched, a.repaint) })
	}
	a.Project.SetLoading()
	return a, tea.Batch(cmd, loadProjectCmd(a.backend, a.token, msg.ProjectID))
}
