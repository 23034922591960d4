// Package backend implements the domain.AuthClient contract against the
// external REST API. All responses share the envelope
// {status: bool, message: string, data?: {...}}; a response with
// status=false is surfaced as a *domain.APIError carrying the backend's
// message, while transport failures and malformed bodies are returned
// as plain errors so callers can map them to a generic message.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cliphub/gateway/internal/core/domain"
)

// Client talks to the external backend API over HTTPS with an explicit
// per-request timeout. A hung backend call fails the flow instead of
// blocking it indefinitely.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL and request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope is the common response shape of every backend endpoint.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// authData is the payload of login and social-callback responses.
type authData struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        userData `json:"user"`
}

type userData struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  *string `json:"role"`
}

func (u userData) toDomain() domain.BackendUser {
	role := domain.RoleNone
	if u.Role != nil {
		role = domain.ParseRole(*u.Role)
	}
	return domain.BackendUser{
		ID:    strconv.Itoa(u.ID),
		Name:  u.Name,
		Email: u.Email,
		Role:  role,
	}
}

// do performs one backend call and decodes the envelope. It returns an
// *APIError when the backend answered with status=false, and a plain
// error for transport or decoding failures.
func (c *Client) do(ctx context.Context, method, path, bearer string, body any) (*envelope, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode backend response from %s: %w", path, err)
	}

	if resp.StatusCode >= 400 || !env.Status {
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	return &env, nil
}

func (c *Client) doAuth(ctx context.Context, path string, body any) (*domain.LoginResult, error) {
	env, err := c.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}

	var data authData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode auth payload from %s: %w", path, err)
	}
	if data.AccessToken == "" {
		return nil, fmt.Errorf("backend response from %s is missing access_token", path)
	}

	return &domain.LoginResult{
		User:        data.User.toDomain(),
		AccessToken: data.AccessToken,
	}, nil
}

// Login validates email/password against POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string, rememberMe bool) (*domain.LoginResult, error) {
	return c.doAuth(ctx, "/auth/login", map[string]any{
		"email":       email,
		"password":    password,
		"remember_me": rememberMe,
	})
}

// Register creates an account via POST /auth/register. The confirmation
// field mirrors the password; the gateway collects it only once.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  name,
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	})
	return err
}

// SocialExchange trades a provider token for a backend session. Google
// sends an identity token, Facebook an access token; the payload field
// name differs per provider.
func (c *Client) SocialExchange(ctx context.Context, provider domain.SocialProvider, token string) (*domain.LoginResult, error) {
	switch provider {
	case domain.ProviderGoogle:
		return c.doAuth(ctx, "/auth/google/callback", map[string]any{"id_token": token})
	case domain.ProviderFacebook:
		return c.doAuth(ctx, "/auth/facebook/callback", map[string]any{"access_token": token})
	default:
		return nil, fmt.Errorf("unknown social provider %q", provider)
	}
}

// AssignRole sets the user's role via POST /auth/assign-role.
func (c *Client) AssignRole(ctx context.Context, accessToken string, role domain.Role) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/assign-role", accessToken, map[string]any{
		"role": string(role),
	})
	return err
}

// Logout invalidates the server-side token via POST /auth/logout.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", accessToken, nil)
	return err
}

// ForgotPassword requests a reset link via POST /auth/forgot-password.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/forgot-password", "", map[string]any{
		"email": email,
	})
	return err
}

// VerifyResetToken checks a reset token via POST /auth/verify-reset-token.
func (c *Client) VerifyResetToken(ctx context.Context, email, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/verify-reset-token", "", map[string]any{
		"email": email,
		"token": token,
	})
	return err
}

// ResetPassword commits a new password via POST /auth/reset-password.
func (c *Client) ResetPassword(ctx context.Context, email, token, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/reset-password", "", map[string]any{
		"email":                 email,
		"token":                 token,
		"password":              password,
		"password_confirmation": password,
	})
	return err
}

// UpdateProfile changes the display name via PUT /profile/update and
// returns the updated user record.
func (c *Client) UpdateProfile(ctx context.Context, accessToken, name string) (*domain.BackendUser, error) {
	env, err := c.do(ctx, http.MethodPut, "/profile/update", accessToken, map[string]any{
		"name": name,
	})
	if err != nil {
		return nil, err
	}

	var data struct {
		User userData `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode profile payload: %w", err)
	}

	user := data.User.toDomain()
	return &user, nil
}
