package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/models"
)

func TestLogin_StoresSession(t *testing.T) {
	sessions := &fakeSessions{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login/admin", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var input models.LoginInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "admin@ecole.sn", input.Email)

		w.Write([]byte(`{"access_token":"jwt-token","user":{"email":"admin@ecole.sn","role":"ADMIN"}}`))
	}), sessions, nil)

	s, err := client.Login(context.Background(), models.LoginInput{Email: "admin@ecole.sn", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", s.Token)
	assert.Equal(t, "ADMIN", s.Role)
	require.Len(t, sessions.stored, 1)
	assert.Equal(t, "admin@ecole.sn", sessions.stored[0].Email)
}

func TestLogin_FailureStaysAnonymous(t *testing.T) {
	sessions := &fakeSessions{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Identifiants invalides"}`))
	}), sessions, nil)

	_, err := client.Login(context.Background(), models.LoginInput{Email: "admin@ecole.sn", Password: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Identifiants invalides")
	assert.Empty(t, sessions.stored)
	_, tokenErr := sessions.Token()
	assert.ErrorIs(t, tokenErr, ErrNotAuthenticated)
}

func TestLogin_MissingTokenIsError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"email":"admin@ecole.sn"}}`))
	}), &fakeSessions{}, nil)

	_, err := client.Login(context.Background(), models.LoginInput{Email: "admin@ecole.sn", Password: "pw"})
	assert.Error(t, err)
}

func TestLogout_ClearsEvenWhenBackendFails(t *testing.T) {
	called := false
	sessions := &fakeSessions{token: "t"}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}), sessions, nil)

	require.NoError(t, client.Logout(context.Background()))
	assert.True(t, called)
	assert.Equal(t, 1, sessions.cleared)

	// logging out twice is harmless and skips the backend
	called = false
	require.NoError(t, client.Logout(context.Background()))
	assert.False(t, called)
}
