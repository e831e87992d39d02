package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"school-admin/internal/models"
)

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	User        *struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

// Login authenticates an administrator and stores the session.
// On failure the client stays anonymous.
func (c *Client) Login(ctx context.Context, input models.LoginInput) (*models.Session, error) {
	if c.sessions == nil {
		return nil, errors.New("no session store configured")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/auth/login/admin", nil, input, false)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	var resp loginResponse
	if err := decodeData(body, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	s := models.Session{
		Token: resp.Token,
		Email: resp.Email,
		Role:  resp.Role,
	}
	if s.Token == "" {
		s.Token = resp.AccessToken
	}
	if resp.User != nil {
		if s.Email == "" {
			s.Email = resp.User.Email
		}
		if s.Role == "" {
			s.Role = resp.User.Role
		}
	}
	if s.Email == "" {
		s.Email = input.Email
	}
	if s.Token == "" {
		return nil, errors.New("login failed: response carried no token")
	}

	if err := c.sessions.Set(s); err != nil {
		return nil, err
	}

	c.logger.Info("Logged in", "email", s.Email, "role", s.Role)
	return &s, nil
}

// Logout tells the backend (best effort) and always clears the local session
func (c *Client) Logout(ctx context.Context) error {
	if c.sessions == nil {
		return nil
	}

	if _, err := c.token(); err == nil {
		if _, err := c.doRequest(ctx, http.MethodPost, "/auth/logout", nil, struct{}{}, true); err != nil {
			c.logger.Warn("Backend logout failed", "error", err)
		}
	}

	return c.sessions.Clear()
}
