package action

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"keyconsole/internal/api"
)

// ProjectsRedirect is where the console goes after a project is deleted.
const ProjectsRedirect = "/projects"

// NetworkError is the message shown when the API could not be reached.
const NetworkError = "Network error"

// Backend is the slice of the API client the handler needs.
// *api.Client satisfies it.
type Backend interface {
	CreateAPIKey(ctx context.Context, token, projectID string) (*api.APIKey, error)
	DeleteAPIKey(ctx context.Context, token, projectID, apiKeyID string) error
	UpdateProject(ctx context.Context, token, projectID string, upd api.ProjectUpdate) (*api.Project, error)
	DeleteProject(ctx context.Context, token, projectID string) error
	RemoveUser(ctx context.Context, token, projectID, userID string) error
}

// Result is the outcome of a handled form. A non-empty Error is shown in the
// originating dialog; otherwise the console follows Redirect (project list)
// or reloads the project.
type Result struct {
	Error    string
	APIKey   *api.APIKey
	Project  *api.Project
	Redirect string
}

// OK reports whether the mutation succeeded.
func (r Result) OK() bool {
	return r.Error == ""
}

// FormHandler runs a form to completion.
type FormHandler interface {
	Handle(ctx context.Context, token, projectID string, f Form) Result
}

// Handler maps action forms onto API calls.
type Handler struct {
	backend Backend
	logger  *zap.Logger
}

// NewHandler returns a handler using backend. A nil logger disables logging.
func NewHandler(backend Backend, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{backend: backend, logger: logger}
}

// Handle executes f for projectID. It never returns a Go error: failures are
// reported as Result.Error text.
func (h *Handler) Handle(ctx context.Context, token, projectID string, f Form) Result {
	log := h.logger.With(zap.String("action", string(f.Action)), zap.String("project_id", projectID))
	if projectID == "" {
		return Result{Error: "Project id is required"}
	}

	var res Result
	var err error
	switch f.Action {
	case CreateAPIKey:
		res.APIKey, err = h.backend.CreateAPIKey(ctx, token, projectID)

	case DeleteAPIKey:
		id := strings.TrimSpace(f.Get(FieldAPIKeyID))
		if id == "" {
			return Result{Error: "API key id is required"}
		}
		err = h.backend.DeleteAPIKey(ctx, token, projectID, id)

	case UpdateProject:
		upd := api.ProjectUpdate{
			Name:        strings.TrimSpace(f.Get(FieldName)),
			Description: strings.TrimSpace(f.Get(FieldDescription)),
		}
		if upd.Name == "" {
			return Result{Error: "Project name is required"}
		}
		res.Project, err = h.backend.UpdateProject(ctx, token, projectID, upd)

	case DeleteProject:
		err = h.backend.DeleteProject(ctx, token, projectID)
		res.Redirect = ProjectsRedirect

	case RemoveUser:
		id := strings.TrimSpace(f.Get(FieldUserID))
		if id == "" {
			return Result{Error: "User id is required"}
		}
		err = h.backend.RemoveUser(ctx, token, projectID, id)

	default:
		log.Warn("rejected form with unknown action")
		return Result{Error: "Unknown action"}
	}

	if err != nil {
		log.Info("action failed", zap.Error(err))
		return Result{Error: errorText(err)}
	}
	log.Info("action succeeded")
	return res
}

// errorText turns an API error into the string a dialog shows.
func errorText(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	if errors.Is(err, context.Canceled) {
		return "Request canceled"
	}
	return NetworkError
}
