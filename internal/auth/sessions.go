package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"agency-platform/internal/domain/sessions"
	"agency-platform/internal/domain/users"
	"agency-platform/internal/logging"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SessionStore persists server-side sessions. The cookie value is the
// opaque capability referencing a row here.
type SessionStore interface {
	Create(s *sessions.Session) error
	FindByToken(token string) (*sessions.Session, error)
	Touch(token string, at time.Time) error
	DeleteByToken(token string) error
	DeleteExpired(now time.Time) (int64, error)
}

type UserStore interface {
	FindUserByID(id uint) (*users.User, error)
}

// SessionManager establishes, resolves and destroys sessions. Resolution
// additionally understands the previous deployment's JWT cookie as a
// one-time migration read-path; only opaque sessions are ever written.
type SessionManager struct {
	store        SessionStore
	userStore    UserStore
	legacySecret []byte
	now          func() time.Time
}

func NewSessionManager(store SessionStore, userStore UserStore, legacySecret string) *SessionManager {
	return &SessionManager{
		store:        store,
		userStore:    userStore,
		legacySecret: []byte(legacySecret),
		now:          time.Now,
	}
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Establish creates a fresh session for the user. Any prior token is
// destroyed first so an attacker-planted identifier never survives login.
func (m *SessionManager) Establish(userID uint, authMethod, priorToken string) (*sessions.Session, error) {
	if priorToken != "" {
		_ = m.store.DeleteByToken(priorToken)
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &sessions.Session{
		Token:          token,
		UserID:         userID,
		AuthMethod:     authMethod,
		LoginAt:        now,
		LastActivityAt: now,
	}
	if err := m.store.Create(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Resolve maps a cookie value to the current user. An absent, expired or
// orphaned session resolves to (nil, nil, nil): the caller is anonymous,
// not in error. rotated is non-nil when a legacy cookie was upgraded and
// the client must be handed the replacement token.
func (m *SessionManager) Resolve(token string) (user *users.User, rotated *sessions.Session, err error) {
	if token == "" {
		return nil, nil, nil
	}

	now := m.now()
	s, err := m.store.FindByToken(token)
	if err != nil {
		return nil, nil, err
	}

	if s == nil {
		return m.resolveLegacy(token)
	}

	if s.Expired(now) {
		// Fail open to anonymous: destroy the row and treat the caller
		// as logged out rather than erroring.
		_ = m.store.DeleteByToken(token)
		return nil, nil, nil
	}

	u, err := m.userStore.FindUserByID(s.UserID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		_ = m.store.DeleteByToken(token)
		return nil, nil, nil
	}

	if err := m.store.Touch(token, now); err != nil {
		return nil, nil, err
	}
	return u, nil, nil
}

// resolveLegacy decodes the cookie as the old deployment's HS256 JWT and,
// when valid, mints a primary session so the next request uses the new
// mechanism.
func (m *SessionManager) resolveLegacy(token string) (*users.User, *sessions.Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.legacySecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, nil, nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil, nil
	}
	idFloat, ok := claims["user_id"].(float64)
	if !ok || idFloat <= 0 {
		return nil, nil, nil
	}

	u, err := m.userStore.FindUserByID(uint(idFloat))
	if err != nil || u == nil {
		return nil, nil, err
	}

	s, err := m.Establish(u.ID, "legacy_migration", "")
	if err != nil {
		return nil, nil, err
	}
	logging.L().Info("legacy session upgraded", zap.Uint("user_id", u.ID))
	return u, s, nil
}

// Destroy logs the caller out. Idempotent: an unknown token is a no-op.
func (m *SessionManager) Destroy(token string) error {
	if token == "" {
		return nil
	}
	return m.store.DeleteByToken(token)
}

// SweepLoop deletes expired rows periodically until stop is closed.
func (m *SessionManager) SweepLoop(interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			n, err := m.store.DeleteExpired(m.now())
			if err != nil {
				logging.L().Warn("session sweep failed", zap.Error(err))
			} else if n > 0 {
				logging.L().Info("session sweep", zap.Int64("deleted", n))
			}
		case <-stop:
			return
		}
	}
}
