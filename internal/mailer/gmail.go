package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	// UserEmail is the mailbox to send from; "me" when empty
	UserEmail string
	// From overrides the From header, e.g. "École Les Bambins <secretariat@example.com>"
	From string

	RequestTimeout time.Duration
}

// Configured reports whether enough credentials are present to send
func (c GmailConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.AccessToken != "")
}

// GmailSender sends messages with the Gmail API
type GmailSender struct {
	service *gmail.Service
	userID  string
	config  GmailConfig
	logger  *slog.Logger
}

// NewGmailSender creates a sender authorized with the configured OAuth2 token
func NewGmailSender(ctx context.Context, config GmailConfig, logger *slog.Logger) (*GmailSender, error) {
	if !config.Configured() {
		return nil, ErrNotConfigured
	}

	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
	}

	httpClient := oauthConfig.Client(ctx, token)
	if config.RequestTimeout > 0 {
		httpClient.Timeout = config.RequestTimeout
	}

	return newGmailSender(ctx, config, logger, option.WithHTTPClient(httpClient))
}

func newGmailSender(ctx context.Context, config GmailConfig, logger *slog.Logger, opts ...option.ClientOption) (*GmailSender, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	userID := "me"
	if config.UserEmail != "" {
		userID = config.UserEmail
	}

	return &GmailSender{
		service: service,
		userID:  userID,
		config:  config,
		logger:  logger,
	}, nil
}

// Send implements Sender
func (g *GmailSender) Send(ctx context.Context, msg *Message) (string, error) {
	raw, err := BuildMIME(g.config.From, msg, "")
	if err != nil {
		return "", err
	}

	sent, err := g.service.Users.Messages.Send(g.userID, &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail send failed: %w", err)
	}

	g.logger.Info("Email sent", "id", sent.Id, "to", msg.To, "attachments", len(msg.Attachments))
	return sent.Id, nil
}
