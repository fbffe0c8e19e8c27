package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"keyconsole/internal/action"
	"keyconsole/internal/api"
)

// requestTimeout bounds every command's API calls.
const requestTimeout = 30 * time.Second

// enrichConcurrency limits parallel project fetches on the dashboard.
const enrichConcurrency = 4

// Backend is the slice of the API client the app reads with. Mutations go
// through the action submitter instead. *api.Client satisfies it.
type Backend interface {
	Authenticate(ctx context.Context, email, password string) (*api.Credentials, error)
	ListProjects(ctx context.Context, token string) ([]api.Project, error)
	GetProject(ctx context.Context, token, projectID string) (*api.Project, error)
	CurrentUser(ctx context.Context, token string) (*api.User, error)
}

// loginCmd authenticates and returns LoggedInMsg or LoginFailedMsg.
func loginCmd(b Backend, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		creds, err := b.Authenticate(ctx, email, password)
		if err != nil {
			return LoginFailedMsg{Err: err}
		}
		return LoggedInMsg{Credentials: creds}
	}
}

// loadProjectsCmd fetches the project list (phase 1).
func loadProjectsCmd(b Backend, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ps, err := b.ListProjects(ctx, token)
		return ProjectsLoadedMsg{Projects: ps, Err: err}
	}
}

// enrichProjectsCmd fetches every project's detail and the current user in
// parallel (phase 2). The first failure cancels the rest.
func enrichProjectsCmd(b Backend, token string, projects []api.Project) tea.Cmd {
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ProjectID
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		out := make([]api.Project, len(ids))
		var user *api.User
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(enrichConcurrency)
		g.Go(func() error {
			u, err := b.CurrentUser(gctx, token)
			user = u
			return err
		})
		for i, id := range ids {
			g.Go(func() error {
				p, err := b.GetProject(gctx, token, id)
				if err != nil {
					return err
				}
				out[i] = *p
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return ProjectsEnrichedMsg{Err: err}
		}
		return ProjectsEnrichedMsg{Projects: out, User: user}
	}
}

// loadProjectCmd fetches one project snapshot.
func loadProjectCmd(b Backend, token, projectID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := b.GetProject(ctx, token, projectID)
		return ProjectLoadedMsg{ProjectID: projectID, Project: p, Err: err}
	}
}

// waitSubmissionCmd blocks until sub has a result and addresses it to origin.
func waitSubmissionCmd(sub *action.Submission, origin *ModalShell, shared bool) tea.Cmd {
	return func() tea.Msg {
		res, _ := sub.Wait(context.Background())
		return SubmissionDoneMsg{
			ProjectID: sub.ProjectID,
			Form:      sub.Form,
			Result:    res,
			Origin:    origin,
			Shared:    shared,
		}
	}
}
