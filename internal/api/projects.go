package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"keyconsole/internal/jsonutil"
)

// ProjectsPath is the collection endpoint for projects.
const ProjectsPath = "/v1/projects"

// ProjectPath returns the resource path of one project.
func ProjectPath(projectID string) string {
	return ProjectsPath + "/" + url.PathEscape(projectID)
}

// APIKeysPath returns the API key collection of a project.
func APIKeysPath(projectID string) string {
	return ProjectPath(projectID) + "/api-keys"
}

// APIKeyPath returns the resource path of one API key.
func APIKeyPath(projectID, apiKeyID string) string {
	return APIKeysPath(projectID) + "/" + url.PathEscape(apiKeyID)
}

// MemberPath returns the membership resource of a user in a project.
func MemberPath(projectID, userID string) string {
	return ProjectPath(projectID) + "/users/" + url.PathEscape(userID)
}

// ProjectUpdate is the body of PATCH /v1/projects/{id}.
type ProjectUpdate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListProjects returns the projects visible to the caller. Listings may omit
// keys and members.
func (c *Client) ListProjects(ctx context.Context, token string) ([]Project, error) {
	var out []Project
	if err := c.doJSON(ctx, http.MethodGet, ProjectsPath, nil, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject returns one project with its API keys and members.
func (c *Client) GetProject(ctx context.Context, token, projectID string) (*Project, error) {
	var out Project
	if err := c.doJSON(ctx, http.MethodGet, ProjectPath(projectID), nil, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodGet, "/v1/me", nil, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAPIKey creates a key. The returned Key is the full secret and is
// never available again.
func (c *Client) CreateAPIKey(ctx context.Context, token, projectID string) (*APIKey, error) {
	var out APIKey
	if err := c.doJSON(ctx, http.MethodPost, APIKeysPath(projectID), nil, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAPIKey revokes a key.
func (c *Client) DeleteAPIKey(ctx context.Context, token, projectID, apiKeyID string) error {
	return c.doJSON(ctx, http.MethodDelete, APIKeyPath(projectID, apiKeyID), nil, token, nil)
}

// UpdateProject changes a project's name and description.
func (c *Client) UpdateProject(ctx context.Context, token, projectID string, upd ProjectUpdate) (*Project, error) {
	var out Project
	if err := c.doJSON(ctx, http.MethodPatch, ProjectPath(projectID), upd, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project and everything in it.
func (c *Client) DeleteProject(ctx context.Context, token, projectID string) error {
	return c.doJSON(ctx, http.MethodDelete, ProjectPath(projectID), nil, token, nil)
}

// RemoveUser removes a member from a project.
func (c *Client) RemoveUser(ctx context.Context, token, projectID, userID string) error {
	return c.doJSON(ctx, http.MethodDelete, MemberPath(projectID, userID), nil, token, nil)
}

// doJSON sends in (if non-nil) as JSON and decodes the answer into out (if
// non-nil). Non-2xx answers become *StatusError.
func (c *Client) doJSON(ctx context.Context, method, path string, in interface{}, token string, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	resp, err := c.Fetch(ctx, path, RequestOptions{Method: method, Body: body}, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return jsonutil.DecodeWithContext(resp.Body, out, fmt.Sprintf("decode %s %s", method, path))
}
