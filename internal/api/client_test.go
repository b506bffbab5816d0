package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// http.Transport keeps idle connections around after tests finish.
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	)
}

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.com", body["email"])
		require.Equal(t, "hunter2", body["password"])

		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-123",
			"user":  map[string]any{"id": "1", "email": "a@b.com"},
		})
	}))
	defer srv.Close()

	result, err := New(srv.URL).Login(context.Background(), "a@b.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", result.Token)
	assert.Equal(t, "a@b.com", result.User["email"])
}

func TestLogin_BackendDetailSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect email or password", apiErr.Detail)
}

func TestLogin_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	// No {detail} in the body, so the message falls back to status text.
	assert.Equal(t, "Bad Gateway", apiErr.Error())
}

func TestVerifyToken_SendsBearerCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/auth/verify-token", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"id": "1", "email": "a@b.com"})
	}))
	defer srv.Close()

	profile, err := New(srv.URL).VerifyToken(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", profile["email"])
}

func TestSendMessage_WithMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "my bill is wrong", body["message"])

		json.NewEncoder(w).Encode(map[string]string{
			"response":  "Let me check your billing history.",
			"category":  "Billing",
			"sentiment": "Neutral",
		})
	}))
	defer srv.Close()

	reply, err := New(srv.URL).SendMessage(context.Background(), "tok-123", "my bill is wrong")
	require.NoError(t, err)
	assert.Equal(t, "Let me check your billing history.", reply.Response)
	assert.Equal(t, "Billing", reply.Category)
	assert.Equal(t, "Neutral", reply.Sentiment)
}

func TestSendMessage_MissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"category": "General"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).SendMessage(context.Background(), "tok-123", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response")
	// A malformed success body is a validation failure, not an auth failure.
	assert.Equal(t, 0, StatusOf(err))
}

func TestSendMessage_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL).SendMessage(context.Background(), "stale", "hello")
	require.Error(t, err)
	assert.True(t, IsAuthFailure(err))
}

func TestCreateUser_PayloadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/create-user", r.URL.Path)

		var body createUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Records, 1)
		assert.Equal(t, "new@b.com", body.Records[0]["email"])
		assert.Equal(t, "nebula", body.Database)
		assert.Equal(t, "users", body.Collection)

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := New(srv.URL).CreateUser(context.Background(), "new@b.com", "pw", "nebula", "users")
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).Health(context.Background()))
}

func TestDo_NetworkFailure(t *testing.T) {
	// Port 0 is never listening; the dial fails before any response.
	c := New("http://127.0.0.1:0")
	_, err := c.VerifyToken(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err))
}

func TestIsAuthFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"401 status", &Error{Status: http.StatusUnauthorized}, true},
		{"500 with credential detail", &Error{Status: 500, Detail: "Could not validate credentials"}, true},
		{"500 with token detail", &Error{Status: 500, Detail: "Token has expired"}, true},
		{"plain error mentioning token", fmt.Errorf("invalid token signature"), true},
		{"unrelated 500", &Error{Status: 500, Detail: "workflow failed"}, false},
		{"unrelated error", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsAuthFailure(tc.err))
		})
	}
}
