package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cliphub/gateway/internal/core/domain"
	"github.com/cliphub/gateway/internal/core/session"
	"github.com/cliphub/gateway/internal/routing"
	"github.com/cliphub/gateway/middleware"
)

// AuthService orchestrates the authentication flows: it validates
// credentials against the backend, bridges the backend's access token
// into the local session cookie, and computes post-flow destinations.
// It depends on the backend contract and the session store (injected
// via constructor) and MUST NOT touch HTTP or JSON shapes directly.
type AuthService struct {
	backend  domain.AuthClient
	sessions *session.Store
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(backend domain.AuthClient, sessions *session.Store) *AuthService {
	return &AuthService{backend: backend, sessions: sessions}
}

// SessionGrant is the outcome of a flow that establishes or refreshes a
// session: the session itself, the signed token to set as the cookie,
// and the destination the caller should navigate to.
type SessionGrant struct {
	Session            *domain.Session
	Token              string
	ExpiresAt          time.Time
	RedirectTo         string
	RequiresOnboarding bool
}

// grant issues a signed token for the given session and computes the
// role-based destination. Callers must only invoke it after the backend
// has validated the user — a session is never created on unvalidated
// credentials.
func (s *AuthService) grant(sess *domain.Session) (*SessionGrant, error) {
	token, expiresAt, err := s.sessions.Issue(sess)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	sess.ExpiresAt = expiresAt

	return &SessionGrant{
		Session:            sess,
		Token:              token,
		ExpiresAt:          expiresAt,
		RedirectTo:         routing.HomePath(sess.Role),
		RequiresOnboarding: sess.Role == domain.RoleNone,
	}, nil
}

func sessionFromLogin(result *domain.LoginResult) *domain.Session {
	return &domain.Session{
		UserID:      result.User.ID,
		Name:        result.User.Name,
		Email:       result.User.Email,
		Role:        result.User.Role,
		AccessToken: result.AccessToken,
	}
}

// Login validates email/password against the backend and, only on
// success, establishes the local session.
func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*SessionGrant, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	result, err := s.backend.Login(ctx, email, password, rememberMe)
	if err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate %q: %w", email, err)
	}

	grant, err := s.grant(sessionFromLogin(result))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", grant.Session.UserID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return grant, nil
}

// Register creates a backend account and, on success, runs the login
// flow with the same credentials so the user lands authenticated.
// A registration failure surfaces as-is and never attempts the login.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*SessionGrant, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.backend.Register(ctx, name, email, password); err != nil {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register %q: %w", email, err)
	}

	span.SetAttributes(attribute.Bool("registration.success", true))
	span.AddEvent("user.registered")

	return s.Login(ctx, email, password, false)
}

// SocialLogin exchanges a provider token with the backend and
// establishes the local session exactly as a password login would.
func (s *AuthService) SocialLogin(ctx context.Context, provider domain.SocialProvider, token string) (*SessionGrant, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.social_login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("provider", string(provider)),
	))
	defer span.End()

	if provider != domain.ProviderGoogle && provider != domain.ProviderFacebook {
		return nil, fmt.Errorf("social login: %w", ErrUnknownProvider)
	}

	result, err := s.backend.SocialExchange(ctx, provider, token)
	if err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("exchange %s token: %w", provider, err)
	}

	grant, err := s.grant(sessionFromLogin(result))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", grant.Session.UserID),
		attribute.Bool("auth.success", true),
	)

	return grant, nil
}

// AssignRole sets the role of an onboarding user. The session cookie is
// reissued with the new role before the destination is computed, so the
// very next navigation observes it. Role assignment is one-way: a
// session whose role is already set is rejected before any backend
// call, as is an unauthenticated or roleless-token request.
func (s *AuthService) AssignRole(ctx context.Context, sess *domain.Session, role domain.Role) (*SessionGrant, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.assign_role", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("role", string(role)),
	))
	defer span.End()

	if sess == nil || sess.AccessToken == "" {
		return nil, fmt.Errorf("assign role: %w", ErrNotAuthenticated)
	}
	if !role.Assignable() {
		return nil, fmt.Errorf("assign role %q: %w", role, ErrInvalidRole)
	}
	if sess.Role != domain.RoleNone {
		return nil, fmt.Errorf("assign role for user %s: %w", sess.UserID, ErrRoleAlreadyAssigned)
	}

	if err := s.backend.AssignRole(ctx, sess.AccessToken, role); err != nil {
		span.SetAttributes(attribute.Bool("role.assigned", false))
		return nil, fmt.Errorf("assign role for user %s: %w", sess.UserID, err)
	}

	updated := *sess
	updated.Role = role

	grant, err := s.grant(&updated)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", updated.UserID),
		attribute.Bool("role.assigned", true),
	)
	span.AddEvent("role.assigned")

	return grant, nil
}

// Logout invalidates the backend token on a best-effort basis. Backend
// failures are logged and never returned — the caller clears the local
// session regardless of backend reachability.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) {
	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if sess == nil || sess.AccessToken == "" {
		return
	}

	if err := s.backend.Logout(ctx, sess.AccessToken); err != nil {
		span.RecordError(err)
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("user_id", sess.UserID).
			Msg("Backend logout failed, clearing local session anyway")
	}
}

// ForgotPassword requests a reset link for the given email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.forgot_password", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.backend.ForgotPassword(ctx, email); err != nil {
		span.RecordError(err)
		return fmt.Errorf("request password reset: %w", err)
	}
	return nil
}

// VerifyResetToken checks a reset token without consuming it. Safe to
// repeat.
func (s *AuthService) VerifyResetToken(ctx context.Context, email, token string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.verify_reset_token", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.backend.VerifyResetToken(ctx, email, token); err != nil {
		span.RecordError(err)
		return fmt.Errorf("verify reset token: %w", err)
	}
	return nil
}

// ResetPassword commits a new password. The backend invalidates the
// token after a successful commit.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, password string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.reset_password", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.backend.ResetPassword(ctx, email, token, password); err != nil {
		span.RecordError(err)
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// UpdateProfile changes the display name and reissues the session
// cookie with it. The name has no bearing on authorization; the role
// and access token are carried over unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, sess *domain.Session, name string) (*SessionGrant, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.update_profile", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if sess == nil || sess.AccessToken == "" {
		return nil, fmt.Errorf("update profile: %w", ErrNotAuthenticated)
	}

	user, err := s.backend.UpdateProfile(ctx, sess.AccessToken, name)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update profile for user %s: %w", sess.UserID, err)
	}

	updated := *sess
	updated.Name = user.Name

	grant, err := s.grant(&updated)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("user.id", updated.UserID))

	return grant, nil
}
