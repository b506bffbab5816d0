package session

import (
	"context"

	"go.uber.org/zap"
)

// Verifier is the one backend call the bootstrapper needs. Satisfied by
// *api.Client.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (map[string]any, error)
}

// Bootstrap decides, once per process start, whether a persisted token still
// names a live session.
//
//   - No persisted token: the session stays empty.
//   - Backend confirms the token with a well-formed profile: the session is
//     populated.
//   - Anything else (non-2xx, network failure, malformed profile): token and
//     session are cleared so the next start does not retry a known-bad token.
//
// The resulting snapshot is returned so the caller can pick its initial view.
// Bootstrap never retries; recovery is a fresh user-initiated login.
func Bootstrap(ctx context.Context, store *Store, verifier Verifier, logger *zap.Logger) Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	token := store.Token()
	if token == "" {
		logger.Debug("no persisted token, starting unauthenticated")
		return store.Session()
	}

	raw, err := verifier.VerifyToken(ctx, token)
	if err != nil {
		logger.Info("persisted token rejected, clearing session", zap.Error(err))
		store.Logout()
		return store.Session()
	}

	profile, err := ValidateProfile(raw)
	if err != nil {
		logger.Warn("verify-token returned malformed profile, clearing session", zap.Error(err))
		store.Logout()
		return store.Session()
	}

	store.adoptProfile(profile)
	logger.Info("session restored", zap.String("email", profile.Email))
	return store.Session()
}
