package chat

import (
	"context"
	"testing"

	"nebula/internal/api"
	"nebula/internal/config"
	"nebula/internal/session"
)

// fakeBackend scripts backend responses and records call counts.
type fakeBackend struct {
	loginResult api.LoginResult
	loginErr    error
	profile     map[string]any
	verifyErr   error
	reply       api.ChatReply
	replyErr    error
	signupErr   error

	loginCalls  int
	verifyCalls int
	sendCalls   int
	signupCalls int
	lastMessage string
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (api.LoginResult, error) {
	f.loginCalls++
	return f.loginResult, f.loginErr
}

func (f *fakeBackend) VerifyToken(ctx context.Context, token string) (map[string]any, error) {
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.profile, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, token, text string) (api.ChatReply, error) {
	f.sendCalls++
	f.lastMessage = text
	return f.reply, f.replyErr
}

func (f *fakeBackend) CreateUser(ctx context.Context, email, password, database, collection string) error {
	f.signupCalls++
	return f.signupErr
}

type testOption func(*Model)

// withAuthenticatedSession logs a valid user into the store before the test.
func withAuthenticatedSession(t *testing.T) testOption {
	return func(m *Model) {
		t.Helper()
		if err := m.store.Login("tok-test", map[string]any{"id": "1", "email": "a@b.com"}); err != nil {
			t.Fatalf("test session setup: %v", err)
		}
	}
}

func withView(mode ViewMode) testOption {
	return func(m *Model) { m.viewMode = mode }
}

// newTestModel builds a model past the boot stage with an in-memory session
// and the given fake backend.
func newTestModel(t *testing.T, backend *fakeBackend, opts ...testOption) Model {
	t.Helper()
	store := session.NewStore(session.NewMemoryCredentials())
	m := New(store, backend, config.DefaultConfig(), nil)
	m.booting = false
	for _, opt := range opts {
		opt(&m)
	}
	return m
}
