package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/models"
)

func TestSessionStore_SaveLoadClear(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := NewSessionStore(db.KV)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	session := &models.Session{Token: "abc.def.ghi", Email: "admin@ecole.sn", Role: "ADMIN"}
	require.NoError(t, store.Save(session))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, *session, *loaded)

	token, ok, err := db.KV.Get(TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	_, ok, err = db.KV.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStore_MismatchedTokenIsAbsent(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := NewSessionStore(db.KV)
	require.NoError(t, store.Save(&models.Session{Token: "one", Email: "a@b.c"}))
	require.NoError(t, db.KV.Set(map[string]string{TokenKey: "two"}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
