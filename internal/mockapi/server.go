// Package mockapi is an in-memory implementation of the platform REST API.
// It backs `keyconsole mock-server` for local development and the
// integration tests of the api and action packages.
package mockapi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"keyconsole/internal/api"
)

// SessionCookie is the cookie the auth endpoint sets alongside the token.
const SessionCookie = "session_token"

// Roles a member can hold.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Options configures a Server.
type Options struct {
	// Secret signs session tokens. A random secret is generated when empty.
	Secret []byte
	// TokenTTL is the lifetime of issued tokens. Defaults to 24h.
	TokenTTL time.Duration
	Logger   *zap.Logger
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

type account struct {
	user api.User
	hash []byte
}

type project struct {
	id          string
	name        string
	description string
	keys        []api.APIKey
	members     map[string]string // userID -> role
	created     time.Time
}

// Server holds the in-memory platform state.
type Server struct {
	mu       sync.RWMutex
	accounts map[string]*account // by email
	byID     map[string]*account
	projects map[string]*project

	tokens *tokenIssuer
	logger *zap.Logger
	now    func() time.Time
}

// New creates an empty server.
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte(uuid.NewString())
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		accounts: make(map[string]*account),
		byID:     make(map[string]*account),
		projects: make(map[string]*project),
		tokens:   newTokenIssuer(opts.Secret, opts.TokenTTL, opts.Now),
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// AddUser registers an account.
func (s *Server) AddUser(email, name, password string) (api.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return api.User{}, fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; ok {
		return api.User{}, fmt.Errorf("user %s: %w", email, ErrDuplicate)
	}
	a := &account{
		user: api.User{ID: "usr_" + shortID(), Email: email, Name: name},
		hash: hash,
	}
	s.accounts[email] = a
	s.byID[a.user.ID] = a
	return a.user, nil
}

// AddProject creates a project owned by ownerID.
func (s *Server) AddProject(projectID, name, description, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[projectID]; ok {
		return fmt.Errorf("project %s: %w", projectID, ErrDuplicate)
	}
	if _, ok := s.byID[ownerID]; !ok {
		return fmt.Errorf("owner %s: %w", ownerID, ErrNotFound)
	}
	s.projects[projectID] = &project{
		id:          projectID,
		name:        name,
		description: description,
		members:     map[string]string{ownerID: RoleOwner},
		created:     s.now(),
	}
	return nil
}

// AddMember grants userID a role in a project.
func (s *Server) AddMember(projectID, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if _, ok := s.byID[userID]; !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	p.members[userID] = role
	return nil
}

// AddAPIKey creates a key directly, bypassing authorization.
func (s *Server) AddAPIKey(projectID string) (api.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return api.APIKey{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return s.newKeyLocked(p), nil
}

// Project returns a snapshot of a project as the API would render it.
func (s *Server) Project(projectID string) (api.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectID]
	if !ok {
		return api.Project{}, false
	}
	return s.renderLocked(p), true
}

// Seed loads demo data: two users and one project with a key.
// Login with admin@example.com / password123.
func (s *Server) Seed() error {
	admin, err := s.AddUser("admin@example.com", "Admin", "password123")
	if err != nil {
		return err
	}
	dev, err := s.AddUser("dev@example.com", "Developer", "password123")
	if err != nil {
		return err
	}
	if err := s.AddProject("proj_123", "Demo project", "Seeded by keyconsole mock-server", admin.ID); err != nil {
		return err
	}
	if err := s.AddMember("proj_123", dev.ID, RoleMember); err != nil {
		return err
	}
	_, err = s.AddAPIKey("proj_123")
	return err
}

func (s *Server) newKeyLocked(p *project) api.APIKey {
	k := api.APIKey{
		ID:        "key_" + shortID(),
		Key:       "kc_live_" + hex.EncodeToString(uuidBytes()),
		CreatedAt: s.now().UTC(),
	}
	p.keys = append(p.keys, k)
	return k
}

func (s *Server) renderLocked(p *project) api.Project {
	out := api.Project{
		ProjectID:   p.id,
		Name:        p.name,
		Description: p.description,
		APIKeys:     append([]api.APIKey{}, p.keys...),
		Members:     make([]api.User, 0, len(p.members)),
	}
	for userID, role := range p.members {
		a, ok := s.byID[userID]
		if !ok {
			continue
		}
		u := a.user
		u.Role = role
		out.Members = append(out.Members, u)
	}
	sort.Slice(out.Members, func(i, j int) bool {
		if rank(out.Members[i].Role) != rank(out.Members[j].Role) {
			return rank(out.Members[i].Role) < rank(out.Members[j].Role)
		}
		return out.Members[i].Email < out.Members[j].Email
	})
	return out
}

func rank(role string) int {
	switch role {
	case RoleOwner:
		return 0
	case RoleAdmin:
		return 1
	}
	return 2
}

func shortID() string {
	b := uuidBytes()
	return hex.EncodeToString(b[:6])
}

func uuidBytes() []byte {
	u := uuid.New()
	return u[:]
}
