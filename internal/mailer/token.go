package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// DefaultCallbackAddr is where TokenFlow listens for the OAuth2 redirect
const DefaultCallbackAddr = "127.0.0.1:8090"

// TokenFlow obtains a Gmail refresh token with the authorization code flow.
// The browser is redirected to a local callback server that captures the code.
type TokenFlow struct {
	ClientID     string
	ClientSecret string
	// Addr is the callback listen address; DefaultCallbackAddr when empty
	Addr string
	// Endpoint defaults to google.Endpoint
	Endpoint oauth2.Endpoint
	// Open shows the authorization URL to the user
	Open   func(url string) error
	Logger *slog.Logger
}

type callbackResult struct {
	code string
	err  error
}

// Run performs the flow and returns the exchanged token
func (f TokenFlow) Run(ctx context.Context) (*oauth2.Token, error) {
	if f.ClientID == "" || f.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", ErrNotConfigured)
	}

	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	addr := f.Addr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for the OAuth2 callback: %w", err)
	}

	endpoint := f.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}

	config := &oauth2.Config{
		ClientID:     f.ClientID,
		ClientSecret: f.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  "http://" + ln.Addr().String() + "/callback",
		Scopes:       []string{gmail.GmailSendScope},
	}
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var res callbackResult
		switch {
		case query.Get("state") != state:
			res.err = errors.New("authorization callback with an unexpected state")
		case query.Get("error") != "":
			res.err = fmt.Errorf("authorization refused: %s", query.Get("error"))
		case query.Get("code") == "":
			res.err = errors.New("no authorization code received")
		default:
			res.code = query.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprint(w, "<html><body><h1>Autorisation réussie</h1><p>Vous pouvez fermer cette fenêtre.</p></body></html>")
		}

		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("OAuth2 callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if f.Open != nil {
		if err := f.Open(authURL); err != nil {
			logger.Warn("Could not open the authorization URL", "error", err)
		}
	}

	logger.Debug("Waiting for OAuth2 callback", "redirect", config.RedirectURL)

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	token, err := config.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}
