package domain

import (
	"context"
	"fmt"
)

// APIError is a failure reported by the backend itself (an envelope
// with status=false). Message carries the backend's user-facing text;
// transport and decoding failures are plain errors, never APIErrors.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend rejected request (http %d): %s", e.StatusCode, e.Message)
}

// SocialProvider identifies an OAuth provider whose token the gateway
// exchanges with the backend.
type SocialProvider string

const (
	ProviderGoogle   SocialProvider = "google"
	ProviderFacebook SocialProvider = "facebook"
)

// BackendUser is the user record returned by the backend's auth
// endpoints. Role preserves the backend's nullable role field.
type BackendUser struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// LoginResult is the normalized response of a successful credential
// validation or social token exchange: the user profile plus the bearer
// token for subsequent backend calls on the user's behalf.
type LoginResult struct {
	User        BackendUser
	AccessToken string
}

// AuthClient defines the contract with the external backend API that
// owns credentials, roles and profile data. Implementations live in
// internal/core/backend. The Logic layer depends on this interface
// only — never on HTTP or JSON shapes directly.
//
// Every method honors ctx cancellation and the client's request
// timeout; a timed-out call surfaces as a transport error, never as a
// silent success.
type AuthClient interface {
	// Login validates email/password and returns the user plus access
	// token. A credential rejection is returned as an *APIError-style
	// error carrying the backend's message, not as a nil result.
	Login(ctx context.Context, email, password string, rememberMe bool) (*LoginResult, error)

	// Register creates an account. It returns only success or failure;
	// callers wanting a session run Login afterwards.
	Register(ctx context.Context, name, email, password string) error

	// SocialExchange trades a provider token (Google id_token or
	// Facebook access_token) for the same result shape as Login.
	SocialExchange(ctx context.Context, provider SocialProvider, token string) (*LoginResult, error)

	// AssignRole sets the user's role. Requires the session's access
	// token as bearer credential.
	AssignRole(ctx context.Context, accessToken string, role Role) error

	// Logout invalidates the server-side token. Best-effort from the
	// caller's perspective; errors are reported so they can be logged.
	Logout(ctx context.Context, accessToken string) error

	// ForgotPassword requests a reset link for the given email.
	ForgotPassword(ctx context.Context, email string) error

	// VerifyResetToken checks a reset token without consuming it.
	// Idempotent; safe to repeat.
	VerifyResetToken(ctx context.Context, email, token string) error

	// ResetPassword commits a new password. The backend invalidates the
	// token after use.
	ResetPassword(ctx context.Context, email, token, password string) error

	// UpdateProfile changes the user's display name and returns the
	// updated record.
	UpdateProfile(ctx context.Context, accessToken, name string) (*BackendUser, error)
}
