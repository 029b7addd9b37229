package auth

import (
	"testing"
	"time"

	"agency-platform/internal/domain/sessions"
	"agency-platform/internal/domain/users"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionStore struct {
	rows map[string]*sessions.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{rows: make(map[string]*sessions.Session)}
}

func (s *fakeSessionStore) Create(sess *sessions.Session) error {
	cp := *sess
	s.rows[sess.Token] = &cp
	return nil
}

func (s *fakeSessionStore) FindByToken(token string) (*sessions.Session, error) {
	sess, ok := s.rows[token]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *fakeSessionStore) Touch(token string, at time.Time) error {
	if sess, ok := s.rows[token]; ok {
		sess.LastActivityAt = at
	}
	return nil
}

func (s *fakeSessionStore) DeleteByToken(token string) error {
	delete(s.rows, token)
	return nil
}

func (s *fakeSessionStore) DeleteExpired(now time.Time) (int64, error) {
	var n int64
	for token, sess := range s.rows {
		if sess.Expired(now) {
			delete(s.rows, token)
			n++
		}
	}
	return n, nil
}

type fakeUserStore struct {
	users map[uint]*users.User
}

func (s *fakeUserStore) FindUserByID(id uint) (*users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func newTestManager() (*SessionManager, *fakeSessionStore, *fakeUserStore) {
	store := newFakeSessionStore()
	userStore := &fakeUserStore{users: map[uint]*users.User{
		1: {ID: 1, Email: "a@x.com", Role: users.RoleClient},
	}}
	return NewSessionManager(store, userStore, "test-secret"), store, userStore
}

func TestEstablishAndResolve(t *testing.T) {
	m, _, _ := newTestManager()

	s, err := m.Establish(1, "local", "")
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)

	user, rotated, err := m.Resolve(s.Token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Nil(t, rotated)
	assert.Equal(t, uint(1), user.ID)
}

func TestEstablishRegeneratesPriorToken(t *testing.T) {
	m, store, _ := newTestManager()

	old, err := m.Establish(1, "local", "")
	require.NoError(t, err)

	fresh, err := m.Establish(1, "local", old.Token)
	require.NoError(t, err)
	assert.NotEqual(t, old.Token, fresh.Token)

	_, ok := store.rows[old.Token]
	assert.False(t, ok, "prior session must be destroyed at login")
}

func TestResolveAnonymousCases(t *testing.T) {
	m, _, _ := newTestManager()

	user, rotated, err := m.Resolve("")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Nil(t, rotated)

	user, rotated, err = m.Resolve("no-such-token")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Nil(t, rotated)
}

func TestResolveExpiredSessionDestroysRow(t *testing.T) {
	m, store, _ := newTestManager()

	s, err := m.Establish(1, "local", "")
	require.NoError(t, err)

	// Inactive past the inactivity timeout.
	store.rows[s.Token].LastActivityAt = time.Now().Add(-sessions.InactivityTimeout - time.Minute)

	user, rotated, err := m.Resolve(s.Token)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Nil(t, rotated)

	_, ok := store.rows[s.Token]
	assert.False(t, ok, "expired session row must be deleted on resolve")
}

func TestResolveMaxLifetimeExceeded(t *testing.T) {
	m, store, _ := newTestManager()

	s, err := m.Establish(1, "local", "")
	require.NoError(t, err)

	// Recently active but logged in too long ago.
	store.rows[s.Token].LoginAt = time.Now().Add(-sessions.MaxLifetime - time.Minute)

	user, _, err := m.Resolve(s.Token)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestResolveOrphanedSession(t *testing.T) {
	m, store, userStore := newTestManager()

	s, err := m.Establish(1, "local", "")
	require.NoError(t, err)

	delete(userStore.users, 1)

	user, _, err := m.Resolve(s.Token)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, ok := store.rows[s.Token]
	assert.False(t, ok)
}

func TestResolveLegacyJWTUpgrades(t *testing.T) {
	m, store, _ := newTestManager()

	legacy := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": float64(1),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	token, err := legacy.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	user, rotated, err := m.Resolve(token)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, rotated, "legacy cookie must be upgraded to a primary session")
	assert.Equal(t, uint(1), rotated.UserID)

	_, ok := store.rows[rotated.Token]
	assert.True(t, ok, "upgraded session must be written to the primary store")
}

func TestResolveLegacyJWTBadSignature(t *testing.T) {
	m, _, _ := newTestManager()

	legacy := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": float64(1),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	token, err := legacy.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	user, rotated, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Nil(t, rotated)
}

func TestDestroyIdempotent(t *testing.T) {
	m, _, _ := newTestManager()

	s, err := m.Establish(1, "local", "")
	require.NoError(t, err)

	require.NoError(t, m.Destroy(s.Token))
	require.NoError(t, m.Destroy(s.Token))
	require.NoError(t, m.Destroy(""))
}
