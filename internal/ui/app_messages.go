package ui

import (
	"keyconsole/internal/action"
	"keyconsole/internal/api"
)

// LoginSubmitMsg is sent by the login view when the user presses Enter.
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// LoggedInMsg is sent when authentication succeeded.
type LoggedInMsg struct {
	Credentials *api.Credentials
}

// LoginFailedMsg carries an authentication error to the login view.
type LoginFailedMsg struct {
	Err error
}

// ProjectsLoadedMsg is sent when the dashboard's project list is fetched
// (phase 1: list only, counts may be stale).
type ProjectsLoadedMsg struct {
	Projects []api.Project
	Err      error
}

// ProjectsEnrichedMsg is sent when every project's detail has been fetched in
// parallel (phase 2: accurate key and member counts).
type ProjectsEnrichedMsg struct {
	Projects []api.Project
	User     *api.User
	Err      error
}

// SelectProjectMsg opens a project.
type SelectProjectMsg struct {
	ProjectID string
}

// ProjectLoadedMsg carries a fetched project snapshot.
type ProjectLoadedMsg struct {
	ProjectID string
	Project   *api.Project
	Err       error
}

// SubmissionDoneMsg is sent when a submitted form has a result.
type SubmissionDoneMsg struct {
	ProjectID string
	Form      action.Form
	Result    action.Result
	Origin    *ModalShell
	// Shared is set for a dialog that joined another dialog's identical
	// submission. Only its dialog is updated.
	Shared bool
}

// ShowCreateKeyMsg opens the Create API Key dialog.
type ShowCreateKeyMsg struct{}

// ShowDeleteKeyMsg opens the Delete API Key dialog for the selected key.
type ShowDeleteKeyMsg struct{}

// ShowEditProjectMsg opens the Edit Project dialog.
type ShowEditProjectMsg struct{}

// ShowDeleteProjectMsg opens the Delete Project dialog.
type ShowDeleteProjectMsg struct{}

// ShowRemoveUserMsg opens the Remove User dialog for the selected member.
type ShowRemoveUserMsg struct{}

// ShowDeleteSelectedMsg opens the delete dialog for whatever the focused
// panel has selected (key or member).
type ShowDeleteSelectedMsg struct{}

// ShowProjectSwitcherMsg opens the project switcher.
type ShowProjectSwitcherMsg struct{}

// CopyKeyMsg copies the selected key's secret.
type CopyKeyMsg struct{}

// ToggleKeyMsg reveals or masks the selected key.
type ToggleKeyMsg struct{}

// RefreshMsg reloads the current page.
type RefreshMsg struct{}

// DismissToastMsg closes the newest toast.
type DismissToastMsg struct{}

// BackMsg leaves the project view for the dashboard.
type BackMsg struct{}

// RepaintMsg asks for a redraw after state changed off the event loop
// (toast expiry, copied indicator).
type RepaintMsg struct{}
