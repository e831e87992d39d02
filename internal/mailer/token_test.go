package mailer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "auth-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// callback simulates the browser following the authorization redirect
func callback(t *testing.T, params func(state string) url.Values) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		redirect := u.Query().Get("redirect_uri")
		state := u.Query().Get("state")
		if redirect == "" || state == "" {
			return errors.New("authorization URL without redirect or state")
		}
		resp, err := http.Get(redirect + "?" + params(state).Encode())
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}

func TestTokenFlow_Run(t *testing.T) {
	tokenSrv := newTokenServer(t)

	var scopes string
	flow := TokenFlow{
		ClientID:     "client",
		ClientSecret: "secret",
		Addr:         "127.0.0.1:0",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenSrv.URL},
		Open: func(authURL string) error {
			u, _ := url.Parse(authURL)
			scopes = u.Query().Get("scope")
			assert.Equal(t, "offline", u.Query().Get("access_type"))
			return callback(t, func(state string) url.Values {
				return url.Values{"code": {"auth-code"}, "state": {state}}
			})(authURL)
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := flow.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", token.RefreshToken)
	assert.Equal(t, "access-1", token.AccessToken)
	assert.Contains(t, scopes, "gmail.send")
}

func TestTokenFlow_RejectsWrongState(t *testing.T) {
	tokenSrv := newTokenServer(t)

	flow := TokenFlow{
		ClientID:     "client",
		ClientSecret: "secret",
		Addr:         "127.0.0.1:0",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenSrv.URL},
		Open: callback(t, func(string) url.Values {
			return url.Values{"code": {"auth-code"}, "state": {"forged"}}
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := flow.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected state")
}

func TestTokenFlow_Denied(t *testing.T) {
	flow := TokenFlow{
		ClientID:     "client",
		ClientSecret: "secret",
		Addr:         "127.0.0.1:0",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: "http://127.0.0.1:1/token"},
		Open: callback(t, func(state string) url.Values {
			return url.Values{"error": {"access_denied"}, "state": {state}}
		}),
	}

	_, err := flow.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestTokenFlow_RequiresCredentials(t *testing.T) {
	_, err := TokenFlow{}.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTokenFlow_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	flow := TokenFlow{
		ClientID:     "client",
		ClientSecret: "secret",
		Addr:         "127.0.0.1:0",
		Open: func(string) error {
			cancel()
			return nil
		},
	}

	_, err := flow.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
