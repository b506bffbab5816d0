package api

import (
	"context"
	"net/http"
)

// LoginResult is the success payload of /api/auth/login. User is kept as a
// raw map so the session layer can validate and sanitize it before storage.
type LoginResult struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

// Login exchanges credentials for a session token and user profile.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// VerifyToken asks the backend whether token still names a valid session.
// The raw profile is returned unvalidated; callers decide what counts as
// well-formed.
func (c *Client) VerifyToken(ctx context.Context, token string) (map[string]any, error) {
	var profile map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify-token", token, nil, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// createUserRequest mirrors the bulk-insert shape of /api/create-user.
type createUserRequest struct {
	Records    []map[string]string `json:"records"`
	Database   string              `json:"database"`
	Collection string              `json:"collection"`
}

// CreateUser registers a new account. Any 2xx is success; the endpoint
// returns no payload the client needs.
func (c *Client) CreateUser(ctx context.Context, email, password, database, collection string) error {
	body := createUserRequest{
		Records:    []map[string]string{{"email": email, "password": password}},
		Database:   database,
		Collection: collection,
	}
	return c.do(ctx, http.MethodPost, "/api/create-user", "", body, nil)
}
