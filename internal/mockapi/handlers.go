package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"keyconsole/internal/api"
)

type ctxKey int

const userKey ctxKey = iota

// Handler returns the chi router serving the platform API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Post(api.AuthPath, s.handleAuth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/v1/me", s.handleMe)
		r.Get(api.ProjectsPath, s.handleListProjects)
		r.Route(api.ProjectsPath+"/{projectID}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Patch("/", s.handleUpdateProject)
			r.Delete("/", s.handleDeleteProject)
			r.Post("/api-keys", s.handleCreateAPIKey)
			r.Delete("/api-keys/{apiKeyID}", s.handleDeleteAPIKey)
			r.Delete("/users/{userID}", s.handleRemoveUser)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("mock api request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get(api.RequestIDHeader)),
		)
		next.ServeHTTP(w, r)
	})
}

// requireSession accepts a bearer token or the session cookie.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		} else if c, err := r.Cookie(SessionCookie); err == nil {
			token = c.Value
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c, err := s.tokens.validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		s.mu.RLock()
		_, ok := s.byID[c.Subject]
		s.mu.RUnlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unknown user")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, c.Subject)))
	})
}

func currentUserID(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}

type authBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var body authBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.RLock()
	a, ok := s.accounts[body.Email]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(a.hash, []byte(body.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.tokens.issue(a.user.ID, a.user.Email)
	if err != nil {
		s.logger.Error("issue token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not create session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, api.Credentials{
		Message: "Login successful",
		Token:   token,
		User:    a.user,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	a, ok := s.byID[currentUserID(r)]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unknown user")
		return
	}
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	uid := currentUserID(r)
	s.mu.RLock()
	out := make([]api.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if _, ok := p.members[uid]; ok {
			out = append(out, s.renderLocked(p))
		}
	}
	s.mu.RUnlock()
	sortProjects(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, _, ok := s.memberProjectLocked(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.renderLocked(p))
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var body api.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "Project name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, role, ok := s.memberProjectLocked(w, r)
	if !ok {
		return
	}
	if role != RoleOwner && role != RoleAdmin {
		writeError(w, http.StatusForbidden, "Only owners and admins can edit a project")
		return
	}
	p.name = body.Name
	p.description = strings.TrimSpace(body.Description)
	writeJSON(w, http.StatusOK, s.renderLocked(p))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, role, ok := s.memberProjectLocked(w, r)
	if !ok {
		return
	}
	if role != RoleOwner {
		writeError(w, http.StatusForbidden, "Only the project owner can delete a project")
		return
	}
	delete(s.projects, p.id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, role, ok := s.memberProjectLocked(w, r)
	if !ok {
		return
	}
	if role != RoleOwner && role != RoleAdmin {
		writeError(w, http.StatusForbidden, "Only owners and admins can create API keys")
		return
	}
	writeJSON(w, http.StatusCreated, s.newKeyLocked(p))
}

func (s *Server) handleDeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, role, ok := s.memberProjectLocked(w, r)
	if !ok {
		return
	}
	if role != RoleOwner && role != RoleAdmin {
		writeError(w, http.StatusForbidden, "Only owners and admins can revoke API keys")
		return
	}
	keyID := chi.URLParam(r, "apiKeyID")
	for i, k := range p.keys {
		if k.Identifier() == keyID {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "API key not found")
}

func (s *Server) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, role, ok := s.memberProjectLocked(w, r)
	if !ok {
		return
	}
	if role != RoleOwner && role != RoleAdmin {
		writeError(w, http.StatusForbidden, "Only owners and admins can remove members")
		return
	}
	userID := chi.URLParam(r, "userID")
	target, ok := p.members[userID]
	if !ok {
		writeError(w, http.StatusNotFound, "User is not a member of this project")
		return
	}
	if target == RoleOwner {
		writeError(w, http.StatusBadRequest, "Cannot remove the project owner")
		return
	}
	delete(p.members, userID)
	w.WriteHeader(http.StatusNoContent)
}

// memberProjectLocked resolves {projectID} and the caller's role in it,
// writing a 404 when either is missing. Callers hold s.mu.
func (s *Server) memberProjectLocked(w http.ResponseWriter, r *http.Request) (*project, string, bool) {
	p, ok := s.projects[chi.URLParam(r, "projectID")]
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return nil, "", false
	}
	role, ok := p.members[currentUserID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return nil, "", false
	}
	return p, role, true
}

func sortProjects(ps []api.Project) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
