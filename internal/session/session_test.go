package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/database"
	"school-admin/internal/models"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newManager(t *testing.T) (*Manager, *database.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := NewManager(database.NewSessionStore(db.KV), nil)
	require.NoError(t, err)
	return m, db
}

func TestManager_ExpiredTokenIsNotAuthenticated(t *testing.T) {
	m, db := newManager(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	token := signed(t, jwt.MapClaims{"sub": "1", "exp": now.Add(-time.Minute).Unix()})
	require.NoError(t, m.Set(models.Session{Token: token, Email: "admin@ecole.sn", Role: "ADMIN"}))

	assert.False(t, m.IsAuthenticated())
	_, err := m.Token()
	assert.ErrorIs(t, err, ErrSessionExpired)

	// the session object is still present in storage
	stored, err := database.NewSessionStore(db.KV).Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, token, stored.Token)
	assert.NotNil(t, m.Get())
}

func TestManager_ValidToken(t *testing.T) {
	m, _ := newManager(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	token := signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	require.NoError(t, m.Set(models.Session{Token: token, Email: "admin@ecole.sn"}))

	assert.True(t, m.IsAuthenticated())
	got, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestManager_TokenWithoutExpiryNeverExpires(t *testing.T) {
	m, _ := newManager(t)
	m.SetClock(func() time.Time { return time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC) })

	require.NoError(t, m.Set(models.Session{Token: signed(t, jwt.MapClaims{"sub": "1"})}))
	assert.True(t, m.IsAuthenticated())
}

func TestManager_MalformedTokenIsNotAuthenticated(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.Set(models.Session{Token: "not-a-jwt"}))

	_, err := m.Token()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, m.IsAuthenticated())
}

func TestManager_NoSession(t *testing.T) {
	m, _ := newManager(t)
	assert.Nil(t, m.Get())
	_, err := m.Token()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestManager_ClearIsIdempotentAndNotifiesOnce(t *testing.T) {
	m, _ := newManager(t)

	var events []*models.Session
	unsubscribe := m.Subscribe(func(s *models.Session) { events = append(events, s) })

	require.NoError(t, m.Set(models.Session{Token: signed(t, jwt.MapClaims{})}))
	require.NoError(t, m.Clear())
	require.NoError(t, m.Clear())

	require.Len(t, events, 2)
	assert.NotNil(t, events[0])
	assert.Nil(t, events[1])

	unsubscribe()
	require.NoError(t, m.Set(models.Session{Token: signed(t, jwt.MapClaims{})}))
	assert.Len(t, events, 2)
}

func TestManager_PersistsAcrossInstances(t *testing.T) {
	m, db := newManager(t)
	token := signed(t, jwt.MapClaims{})
	require.NoError(t, m.Set(models.Session{Token: token, Email: "a@b.c", Role: "ADMIN"}))

	reloaded, err := NewManager(database.NewSessionStore(db.KV), nil)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Get())
	assert.Equal(t, "a@b.c", reloaded.Get().Email)
}

func TestManager_ExpireIfNeeded(t *testing.T) {
	m, _ := newManager(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	cleared, err := m.ExpireIfNeeded()
	require.NoError(t, err)
	assert.False(t, cleared)

	require.NoError(t, m.Set(models.Session{Token: signed(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()})}))
	cleared, err = m.ExpireIfNeeded()
	require.NoError(t, err)
	assert.False(t, cleared)

	now = now.Add(2 * time.Minute)
	cleared, err = m.ExpireIfNeeded()
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Nil(t, m.Get())
}

func TestManager_SetRejectsEmptyToken(t *testing.T) {
	m, _ := newManager(t)
	assert.Error(t, m.Set(models.Session{Email: "a@b.c"}))
}

type failingStore struct{}

func (failingStore) Load() (*models.Session, error) { return nil, nil }
func (failingStore) Save(*models.Session) error     { return errors.New("disk full") }
func (failingStore) Clear() error                   { return errors.New("disk full") }

func TestManager_StoreFailuresAreWrapped(t *testing.T) {
	m, err := NewManager(failingStore{}, nil)
	require.NoError(t, err)

	err = m.Set(models.Session{Token: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Error(t, m.Clear())
}

func TestExpiresAt(t *testing.T) {
	exp := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := ExpiresAt(signed(t, jwt.MapClaims{"exp": exp.Unix()}))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))

	got, err = ExpiresAt(signed(t, jwt.MapClaims{"sub": "1"}))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ExpiresAt(signed(t, jwt.MapClaims{"exp": "soon"}))
	assert.Error(t, err)
}
