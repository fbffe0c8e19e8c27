package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"keyconsole/internal/jsonutil"
)

// AuthPath is the login endpoint.
const AuthPath = "/v1/auth"

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticate exchanges email and password for credentials. A non-2xx answer
// yields *AuthError carrying the server's error text, or GenericAuthFailure
// when the server gave none. Session cookies set by the server are kept in
// the client's jar.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*Credentials, error) {
	body, err := json.Marshal(authRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encode auth request: %w", err)
	}
	resp, err := c.Fetch(ctx, AuthPath, RequestOptions{
		Method: http.MethodPost,
		Body:   bytes.NewReader(body),
	}, "")
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		msg := jsonutil.ReadErrorMessage(resp.Body)
		if msg == "" {
			msg = GenericAuthFailure
		}
		return nil, &AuthError{Status: resp.StatusCode, Message: msg}
	}

	var creds Credentials
	if err := jsonutil.DecodeWithContext(resp.Body, &creds, "decode auth response"); err != nil {
		return nil, err
	}
	return &creds, nil
}
