package api

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a platform account, as listed in a project's members.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"` // owner, admin, member
}

// DisplayName returns Name, falling back to Email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// APIKey is a project API key. Key holds the full secret only in the response
// to creation; listings may carry a truncated value.
type APIKey struct {
	ID        string    `json:"id,omitempty"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identifier returns the value sent as apiKeyId when revoking the key.
func (k APIKey) Identifier() string {
	if k.ID != "" {
		return k.ID
	}
	return k.Key
}

// Masked returns the key with its middle hidden: an eight-character prefix
// for identification, bullets, and the last four characters. Lengths count
// runes.
func (k APIKey) Masked() string {
	r := []rune(k.Key)
	n := len(r)
	if n <= 12 {
		return strings.Repeat("•", n)
	}
	return string(r[:8]) + strings.Repeat("•", 8) + string(r[n-4:])
}

// Project is the read-only snapshot the console renders.
type Project struct {
	ProjectID   string   `json:"projectId"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	APIKeys     []APIKey `json:"apiKeys"`
	Members     []User   `json:"members"`
}

// Credentials is the body of a successful POST /v1/auth.
type Credentials struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// ExpiresAt reads the token's exp claim without verifying the signature.
// The console never trusts the claim for authorization; it only displays it.
func (c *Credentials) ExpiresAt() (time.Time, bool) {
	return TokenExpiry(c.Token)
}

// TokenExpiry returns the unverified exp claim of a JWT.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
