package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"school-admin/internal/models"
	"school-admin/internal/session"
)

// Authentication failures. They are the session package's errors so that
// callers can match either with errors.Is.
var (
	ErrNotAuthenticated = session.ErrNotAuthenticated
	ErrSessionExpired   = session.ErrSessionExpired
)

// Sessions is the part of the session manager the client needs
type Sessions interface {
	Token() (string, error)
	Set(models.Session) error
	Clear() error
	Subscribe(fn session.Listener) func()
}

// Cache stores list response bodies keyed by request path
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
	InvalidatePrefix(prefix string) error
	Purge() error
}

// ClientConfig configures the API client behavior
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	BypassHeader string
	BypassValue  string
	UserAgent    string
}

// DefaultBypassHeader is sent on every request so that the tunnel in front
// of development backends does not answer with its HTML interstitial
const (
	DefaultBypassHeader = "ngrok-skip-browser-warning"
	DefaultBypassValue  = "true"
)

// Client talks to the school backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	config     ClientConfig
	sessions   Sessions
	cache      Cache
	logger     *slog.Logger

	Students    *Resource[models.Student]
	Classes     *Resource[models.Class]
	Levels      *Resource[models.Level]
	Families    *Resource[models.Family]
	Parents     *Resource[models.Parent]
	Fees        *Resource[models.Fee]
	Payments    *Resource[models.Payment]
	Invoices    *Resource[models.Invoice]
	Documents   *Resource[models.Document]
	FeeProfiles *Resource[models.StudentFeeProfile]
	Subjects    *Resource[models.Subject]
	Grades      *Resource[models.Grade]
	Quarters    *Resource[models.Quarter]
}

// APIError is a non-2xx response from the backend
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrSessionExpired) match a backend 401
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	return nil
}

// NewClient creates a new API client. cache may be nil.
func NewClient(config ClientConfig, sessions Sessions, cache Cache, logger *slog.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "school-admin/1.0"
	}
	if config.BypassHeader == "" {
		config.BypassHeader = DefaultBypassHeader
		config.BypassValue = DefaultBypassValue
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:   config,
		sessions: sessions,
		cache:    cache,
		logger:   logger,
	}

	c.Students = newResource[models.Student](c, "/students", "/v1/students", "/classes", "/v1/classes", "/student-fee-profiles")
	c.Classes = newResource[models.Class](c, "/classes", "/v1/classes")
	c.Levels = newResource[models.Level](c, "/levels", "/classes", "/v1/classes")
	c.Families = newResource[models.Family](c, "/families", "/parents")
	c.Parents = newResource[models.Parent](c, "/parents", "/families")
	c.Fees = newResource[models.Fee](c, "/fees", "/student-fee-profiles")
	c.Payments = newResource[models.Payment](c, "/payments", "/v1/students", "/invoices", "/student-fee-profiles", "/v1/financial-reports")
	c.Invoices = newResource[models.Invoice](c, "/invoices", "/student-fee-profiles", "/v1/financial-reports")
	c.Documents = newResource[models.Document](c, "/documents")
	c.FeeProfiles = newResource[models.StudentFeeProfile](c, "/student-fee-profiles")
	c.Subjects = newResource[models.Subject](c, "/subjects", "/grades")
	c.Grades = newResource[models.Grade](c, "/grades")
	c.Quarters = newResource[models.Quarter](c, "/quarters")

	// cached lists belong to whoever was logged in when they were fetched
	if cache != nil && sessions != nil {
		sessions.Subscribe(func(*models.Session) {
			if err := cache.Purge(); err != nil {
				logger.Warn("Failed to purge cache after session change", "error", err)
			}
		})
	}

	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an HTTP request and returns the body of a 2xx response.
// When auth is true a valid session is required before anything goes on the wire.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}, auth bool) ([]byte, error) {
	var token string
	if auth {
		t, err := c.token()
		if err != nil {
			return nil, err
		}
		token = t
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set(c.config.BypassHeader, c.config.BypassValue)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("API request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized && c.sessions != nil {
			if err := c.sessions.Clear(); err != nil {
				c.logger.Warn("Failed to clear session after 401", "error", err)
			}
		}
		return nil, apiErr
	}

	return respBody, nil
}

// token returns the bearer token, clearing a session that expired locally
func (c *Client) token() (string, error) {
	if c.sessions == nil {
		return "", ErrNotAuthenticated
	}
	token, err := c.sessions.Token()
	if err == nil {
		return token, nil
	}
	if errors.Is(err, ErrSessionExpired) {
		if clearErr := c.sessions.Clear(); clearErr != nil {
			c.logger.Warn("Failed to clear expired session", "error", clearErr)
		}
		return "", fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	return "", err
}

// newAPIError extracts the backend's message, falling back to "HTTP <status>".
// The backend sends message as a string, or as a list for validation failures.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}

	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = rawMessage(payload.Message)
		if msg == "" {
			msg = payload.Error
		}
	}
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}

	return &APIError{Status: status, Message: msg}
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

// decodeData decodes body into out, unwrapping a {"data": ...} envelope
func decodeData(body []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return errors.New("empty response body")
	}

	if trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
			trimmed = envelope.Data
		}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// invalidate drops cached lists under every prefix. Failures only cost a stale read.
func (c *Client) invalidate(prefixes []string) {
	if c.cache == nil {
		return
	}
	for _, prefix := range prefixes {
		if err := c.cache.InvalidatePrefix(prefix); err != nil {
			c.logger.Warn("Failed to invalidate cache", "prefix", prefix, "error", err)
		}
	}
}

// cacheKey is the request path with its encoded query
func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// fetchList GETs a list, serving it from the cache when possible
func fetchList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if _, err := c.token(); err != nil {
		return nil, err
	}

	key := cacheKey(path, query)
	if c.cache != nil {
		data, err := c.cache.Get(key)
		if err != nil {
			c.logger.Warn("Cache read failed", "key", key, "error", err)
		} else if data != nil {
			var items []T
			if err := decodeData(data, &items); err == nil {
				return items, nil
			}
		}
	}

	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil, true)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := decodeData(body, &items); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(key, body); err != nil {
			c.logger.Warn("Cache write failed", "key", key, "error", err)
		}
	}

	return items, nil
}

// fetchOne GETs a single object
func fetchOne[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil, true)
	if err != nil {
		return nil, err
	}

	var item T
	if err := decodeData(body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
