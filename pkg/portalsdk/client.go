package portalsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to the auth service's HTTP API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (StoredSession, error) {
	return c.postForSession(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and returns the implicit first session.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (StoredSession, error) {
	return c.postForSession(ctx, "/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	})
}

// LoginWithGoogle exchanges a Google ID token for a session.
func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (StoredSession, error) {
	return c.postForSession(ctx, "/api/auth/google", map[string]string{
		"idToken": idToken,
	})
}

// Refresh rotates the refresh token and returns the replacement session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (StoredSession, error) {
	return c.postForSession(ctx, "/api/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	})
}

// Logout revokes the refresh token server-side. The server always answers
// 200, so only transport failures surface here.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	var discard json.RawMessage
	return c.post(ctx, "/api/auth/logout", map[string]string{
		"refreshToken": refreshToken,
	}, &discard)
}

// RequestPasswordReset asks the service to email a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	var discard json.RawMessage
	return c.post(ctx, "/api/auth/forgot-password", map[string]string{
		"email": email,
	}, &discard)
}

// CompletePasswordReset exchanges an emailed token for a new password.
func (c *Client) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	var discard json.RawMessage
	return c.post(ctx, "/api/auth/reset-password", map[string]string{
		"token":       token,
		"newPassword": newPassword,
	}, &discard)
}

func (c *Client) postForSession(ctx context.Context, path string, body map[string]string) (StoredSession, error) {
	var payload sessionPayload
	if err := c.post(ctx, path, body, &payload); err != nil {
		return StoredSession{}, err
	}
	return newStoredSession(payload), nil
}

// post sends a JSON body and unmarshals the envelope's data field into out.
// Envelope failures are mapped to the package sentinels.
func (c *Client) post(ctx context.Context, path string, body map[string]string, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrTransient, err)
	}

	if !env.Success {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Error,
			sentinel:   sentinelFor(resp.StatusCode, env.Error),
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: malformed data: %v", ErrTransient, err)
		}
	}
	return nil
}

func sentinelFor(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusBadRequest && strings.Contains(message, "already registered"):
		return ErrEmailTaken
	case status >= 500 || status == http.StatusTooManyRequests:
		return ErrTransient
	default:
		return nil
	}
}
