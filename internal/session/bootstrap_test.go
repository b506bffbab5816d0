package session

import (
	"context"
	"testing"

	"nebula/internal/api"
)

// fakeVerifier scripts the verify-token call for bootstrap scenarios.
type fakeVerifier struct {
	profile map[string]any
	err     error
	calls   int
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, token string) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func storeWithToken(t *testing.T, token string) *Store {
	t.Helper()
	creds := NewMemoryCredentials()
	if token != "" {
		if err := creds.Save(Record{Token: token, LoggedIn: true}); err != nil {
			t.Fatal(err)
		}
	}
	return NewStore(creds)
}

func TestBootstrap_NoToken(t *testing.T) {
	t.Parallel()
	store := storeWithToken(t, "")
	verifier := &fakeVerifier{}

	got := Bootstrap(context.Background(), store, verifier, nil)

	if got.Authenticated() {
		t.Error("Expected unauthenticated session")
	}
	if verifier.calls != 0 {
		t.Errorf("Verify must not be called without a token, got %d calls", verifier.calls)
	}
}

func TestBootstrap_ValidToken(t *testing.T) {
	t.Parallel()
	store := storeWithToken(t, "tok-1")
	verifier := &fakeVerifier{profile: map[string]any{"id": "1", "email": "a@b.com", "password": "leak"}}

	got := Bootstrap(context.Background(), store, verifier, nil)

	if !got.Authenticated() {
		t.Fatal("Expected authenticated session")
	}
	if got.User.Email != "a@b.com" {
		t.Errorf("Expected verified profile, got %+v", got.User)
	}
	if _, ok := got.User.Extra["password"]; ok {
		t.Error("Password must be stripped from the verified profile")
	}
}

func TestBootstrap_ServerError(t *testing.T) {
	t.Parallel()
	store := storeWithToken(t, "tok-1")
	verifier := &fakeVerifier{err: &api.Error{Status: 500, Detail: "boom"}}

	got := Bootstrap(context.Background(), store, verifier, nil)

	if got.Token != "" || got.User != nil {
		t.Errorf("Expected fully cleared session, got %+v", got)
	}
	if store.Token() != "" {
		t.Error("Known-bad token must not survive bootstrap")
	}
}

func TestBootstrap_MalformedProfile(t *testing.T) {
	t.Parallel()
	store := storeWithToken(t, "tok-1")
	// 200 with a body missing required fields counts as a failed verification.
	verifier := &fakeVerifier{profile: map[string]any{"email": "a@b.com"}}

	got := Bootstrap(context.Background(), store, verifier, nil)

	if got.Token != "" || got.User != nil {
		t.Errorf("Expected cleared session on malformed profile, got %+v", got)
	}
}

func TestBootstrap_VerifiesExactlyOnce(t *testing.T) {
	t.Parallel()
	store := storeWithToken(t, "tok-1")
	verifier := &fakeVerifier{err: &api.Error{Status: 401}}

	Bootstrap(context.Background(), store, verifier, nil)

	if verifier.calls != 1 {
		t.Errorf("Expected exactly one verification attempt, got %d", verifier.calls)
	}
}
