package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
)

// Client talks to the remote auth service. The client never inspects or
// validates tokens; they are opaque strings minted and checked by the
// backend.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(cfg config.APIConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Signup registers a new account. It does not log the user in.
func (c *Client) Signup(ctx context.Context, input SignupInput) error {
	role := input.Role
	if role == "" {
		role = RoleBuyer
	}
	body := map[string]string{
		"username": input.Username,
		"email":    input.Email,
		"password": input.Password,
		"role":     string(role),
	}
	return c.post(ctx, "/signup", body, nil, "Registration failed")
}

// Login exchanges credentials for a profile carrying an access token.
func (c *Client) Login(ctx context.Context, input LoginInput) (*LoginResponse, error) {
	body := map[string]string{
		"email":    input.Email,
		"password": input.Password,
	}
	var resp LoginResponse
	if err := c.post(ctx, "/login", body, &resp, "Login failed"); err != nil {
		return nil, err
	}
	if resp.User.AccessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNetwork, "Login failed")
	}
	return &resp, nil
}

// Logout tells the backend to invalidate the session for the email.
func (c *Client) Logout(ctx context.Context, email string) error {
	return c.post(ctx, "/logout", map[string]string{"email": email}, nil, "Logout failed")
}

func (c *Client) post(ctx context.Context, path string, body, out any, fallbackMessage string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fallbackMessage)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeNetwork, backendMessage(resp.Body, fallbackMessage))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fallbackMessage)
	}
	return nil
}

// backendMessage surfaces the backend's human-readable message when one is
// present, otherwise the generic fallback.
func backendMessage(body io.Reader, fallback string) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return fallback
}
