// Package session owns the client-held authentication state: the bearer
// token, the verified user profile, and their persistence between runs.
// Views never mutate the session directly; every change goes through the
// Store's methods.
package session

import (
	"sync"

	"go.uber.org/zap"
)

// Session is a read-only snapshot of the authentication state.
type Session struct {
	Token string
	User  *Profile
}

// Authenticated holds iff both the token and a verified profile are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Store is the single owner of the session. Safe for use from the UI event
// loop and CLI commands alike.
type Store struct {
	mu     sync.RWMutex
	creds  Credentials
	logger *zap.Logger

	token string
	user  *Profile
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger attaches a logger to the store.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a session store backed by creds. Any persisted token is
// loaded immediately, but the user stays nil until a login or a successful
// token verification: a restored token alone never authenticates.
func NewStore(creds Credentials, opts ...StoreOption) *Store {
	s := &Store{creds: creds, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	rec, err := creds.Load()
	if err != nil {
		s.logger.Warn("could not load persisted credentials", zap.Error(err))
		return s
	}
	s.token = rec.Token
	return s
}

// Login records a successful authentication. The token is persisted
// unconditionally. The raw user data must carry non-empty id and email;
// otherwise the user stays nil, the returned error describes why, and the
// caller must treat the login as failed despite the HTTP success.
func (s *Store) Login(token string, rawUser map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token

	profile, err := ValidateProfile(rawUser)
	if err != nil {
		s.user = nil
		// Token is still written so the bootstrapper can retry verification
		// on the next start, matching the persist-then-validate order.
		if saveErr := s.creds.Save(Record{Token: token, LoggedIn: true}); saveErr != nil {
			s.logger.Warn("could not persist token", zap.Error(saveErr))
		}
		s.logger.Error("login returned invalid user data", zap.Error(err))
		return err
	}

	s.user = profile
	if saveErr := s.creds.Save(Record{Token: token, LoggedIn: true, User: profile}); saveErr != nil {
		s.logger.Warn("could not persist credentials", zap.Error(saveErr))
	}
	s.logger.Info("session established", zap.String("email", profile.Email))
	return nil
}

// Logout clears the persisted and in-memory session. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	if err := s.creds.Clear(); err != nil {
		s.logger.Warn("could not clear persisted credentials", zap.Error(err))
	}
}

// Authenticated reports whether both token and verified profile are present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Session returns a snapshot; the caller may keep it without holding locks.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{Token: s.token, User: s.user.Clone()}
}

// adoptProfile installs a verified profile for the current token. Used by
// the bootstrapper after the backend confirmed the persisted token.
func (s *Store) adoptProfile(profile *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = profile
	if err := s.creds.Save(Record{Token: s.token, LoggedIn: true, User: profile}); err != nil {
		s.logger.Warn("could not refresh cached profile", zap.Error(err))
	}
}
