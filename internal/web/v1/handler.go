package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cliphub/gateway/internal/core/domain"
	"github.com/cliphub/gateway/internal/core/session"
	"github.com/cliphub/gateway/internal/logging"
	logicv1 "github.com/cliphub/gateway/internal/logic/v1"
	"github.com/cliphub/gateway/middleware"
)

// User-facing messages. Backend-reported messages take precedence where
// a flow allows them through; anything unexpected collapses to
// msgUnexpected and never leaks internals.
const (
	msgUnexpected       = "An unexpected error occurred"
	msgInvalidLogin     = "Invalid email or password"
	msgRegisterFailed   = "Registration failed. Please try again."
	msgAssignRoleFailed = "Failed to assign role. Please try again."
	msgResetInvalid     = "Invalid or expired reset link."
	msgResetFailed      = "Failed to reset password. Please try again."
	msgProfileFailed    = "Failed to update profile. Please try again."
	msgNotAuthenticated = "Not authenticated"
	msgRoleAssigned     = "Role already assigned"
	msgInvalidRole      = "Invalid role"
)

// Handler groups HTTP handlers for the auth API v1.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	auth     *logicv1.AuthService
	sessions *session.Store
}

// NewHandler creates a new Handler with the given flow service and
// session store.
func NewHandler(auth *logicv1.AuthService, sessions *session.Store) *Handler {
	return &Handler{auth: auth, sessions: sessions}
}

// RegisterRoutes registers all auth API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/signup", h.Signup)
	rg.POST("/auth/google/callback", h.socialCallback(domain.ProviderGoogle))
	rg.POST("/auth/facebook/callback", h.socialCallback(domain.ProviderFacebook))
	rg.POST("/auth/assign-role", h.AssignRole)
	rg.POST("/auth/logout", h.Logout)
	rg.POST("/auth/forgot-password", h.ForgotPassword)
	rg.POST("/auth/verify-reset-token", h.VerifyResetToken)
	rg.POST("/auth/reset-password", h.ResetPassword)
	rg.PUT("/profile", h.UpdateProfile)
	rg.GET("/auth/session", h.GetSession)
}

// failureMessage maps a flow error onto the message shown to the user.
// fallback is used when the backend rejected the request but supplied
// no message of its own.
func failureMessage(err error, fallback string) string {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, logicv1.ErrNotAuthenticated):
		return msgNotAuthenticated
	case errors.Is(err, logicv1.ErrRoleAlreadyAssigned):
		return msgRoleAssigned
	case errors.Is(err, logicv1.ErrInvalidRole):
		return msgInvalidRole
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	default:
		return msgUnexpected
	}
}

// Login handles POST /auth/login: backend credential validation, then
// session cookie issuance, then role-based destination.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := logging.FromContext(ctx)

	var req struct {
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required"`
		RememberMe bool   `json:"remember_me"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, domain.AuthResult{Error: err.Error()})
		return
	}

	grant, err := h.auth.Login(ctx, req.Email, req.Password, req.RememberMe)
	if err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Login failed")
		c.JSON(http.StatusOK, domain.AuthResult{Error: failureMessage(err, msgInvalidLogin)})
		return
	}

	h.sessions.Write(c, grant.Token, grant.ExpiresAt)
	logger.Info().Str("user_id", grant.Session.UserID).Msg("Login successful")

	c.JSON(http.StatusOK, domain.AuthResult{
		Success:            true,
		RequiresOnboarding: grant.RequiresOnboarding,
		RedirectTo:         grant.RedirectTo,
	})
}

// Signup handles POST /auth/signup: backend registration followed by an
// automatic login with the same credentials.
func (h *Handler) Signup(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := logging.FromContext(ctx)

	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, domain.AuthResult{Error: err.Error()})
		return
	}

	grant, err := h.auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Signup failed")
		c.JSON(http.StatusOK, domain.AuthResult{Error: failureMessage(err, msgRegisterFailed)})
		return
	}

	h.sessions.Write(c, grant.Token, grant.ExpiresAt)
	logger.Info().Str("user_id", grant.Session.UserID).Msg("Signup successful")

	c.JSON(http.StatusOK, domain.AuthResult{
		Success:            true,
		RequiresOnboarding: grant.RequiresOnboarding,
		RedirectTo:         grant.RedirectTo,
	})
}

// socialCallback builds the handler for one provider's token exchange.
// Google sends an identity token, Facebook an access token.
func (h *Handler) socialCallback(provider domain.SocialProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
			attribute.String("layer", "web"),
			attribute.String("method", c.Request.Method),
			attribute.String("path", c.Request.URL.Path),
		))
		defer span.End()

		logger := logging.FromContext(ctx)

		var req struct {
			IDToken     string `json:"id_token"`
			AccessToken string `json:"access_token"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			span.SetAttributes(attribute.Bool("request.valid", false))
			c.JSON(http.StatusBadRequest, domain.AuthResult{Error: err.Error()})
			return
		}

		token := req.IDToken
		if provider == domain.ProviderFacebook {
			token = req.AccessToken
		}
		if token == "" {
			c.JSON(http.StatusBadRequest, domain.AuthResult{Error: "Missing provider token"})
			return
		}

		grant, err := h.auth.SocialLogin(ctx, provider, token)
		if err != nil {
			span.RecordError(err)
			logger.Warn().Err(err).Str("provider", string(provider)).Msg("Social login failed")
			c.JSON(http.StatusOK, domain.AuthResult{
				Error: failureMessage(err, "Could not sign in with "+string(provider)+". Please try again."),
			})
			return
		}

		h.sessions.Write(c, grant.Token, grant.ExpiresAt)
		logger.Info().
			Str("user_id", grant.Session.UserID).
			Str("provider", string(provider)).
			Msg("Social login successful")

		c.JSON(http.StatusOK, domain.AuthResult{
			Success:            true,
			RequiresOnboarding: grant.RequiresOnboarding,
			RedirectTo:         grant.RedirectTo,
		})
	}
}

// AssignRole handles POST /auth/assign-role. The session cookie is
// reissued with the new role in this same response, so the next
// navigation already sees it.
func (h *Handler) AssignRole(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := logging.FromContext(ctx)

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, domain.AuthResult{Error: err.Error()})
		return
	}

	sess := middleware.SessionFromContext(c)
	grant, err := h.auth.AssignRole(ctx, sess, domain.Role(req.Role))
	if err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Role assignment failed")

		status := http.StatusOK
		if errors.Is(err, logicv1.ErrNotAuthenticated) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, domain.AuthResult{Error: failureMessage(err, msgAssignRoleFailed)})
		return
	}

	h.sessions.Write(c, grant.Token, grant.ExpiresAt)
	logger.Info().
		Str("user_id", grant.Session.UserID).
		Str("role", string(grant.Session.Role)).
		Msg("Role assigned")

	c.JSON(http.StatusOK, domain.AuthResult{Success: true, RedirectTo: grant.RedirectTo})
}

// Logout handles POST /auth/logout. The backend call is best-effort;
// the local session cookie is always cleared.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	sess := middleware.SessionFromContext(c)
	h.auth.Logout(ctx, sess)

	h.sessions.Clear(c)
	logging.FromContext(ctx).Info().Msg("Logged out")

	c.JSON(http.StatusOK, domain.AuthResult{Success: true, RedirectTo: "/login"})
}

// ForgotPassword handles POST /auth/forgot-password. The response is
// identical whether or not the email is registered; only a transport
// failure produces a different outcome.
func (h *Handler) ForgotPassword(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := logging.FromContext(ctx)

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, domain.AuthResult{Error: err.Error()})
		return
	}

	if err := h.auth.ForgotPassword(ctx, req.Email); err != nil {
		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) {
			span.RecordError(err)
			logger.Error().Err(err).Msg("Password reset request failed")
			c.JSON(http.StatusOK, domain.AuthResult{Error: msgUnexpected})
			return
		}
		// Backend said no (likely unknown email); answer exactly as if
		// it said yes.
		logger.Info().Msg("Password reset requested for unknown email")
	}

	c.JSON(http.StatusOK, domain.AuthResult{Success: true})
}

// VerifyResetToken handles POST /auth/verify-reset-token. Idempotent.
func (h *Handler) VerifyResetToken(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := logging.FromContext(ctx)

	var req struct {
		Email string `json:"email" binding:"required,email"`
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, domain.AuthResult{Error: err.Error()})
		return
	}

	if err := h.auth.VerifyResetToken(ctx, req.Email, req.Token); err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Reset token verification failed")
		// One generic message for stale, wrong and unknown tokens, so
		// the endpoint is useless as a token-guessing oracle.
		c.JSON(http.StatusOK, domain.AuthResult{Error: msgResetInvalid})
		return
	}

	c.JSON(http.StatusOK, domain.AuthResult{Success: true})
}

// ResetPassword handles POST /auth/reset-password. The reset token is
// single-use; the backend invalidates it on success.
func (h *Handler) ResetPassword(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := logging.FromContext(ctx)

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, domain.AuthResult{Error: err.Error()})
		return
	}

	if err := h.auth.ResetPassword(ctx, req.Email, req.Token, req.Password); err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Password reset failed")
		c.JSON(http.StatusOK, domain.AuthResult{Error: failureMessage(err, msgResetFailed)})
		return
	}

	c.JSON(http.StatusOK, domain.AuthResult{Success: true, RedirectTo: "/login"})
}

// UpdateProfile handles PUT /profile. The display name does not affect
// authorization, but the cookie is reissued so the UI sees the new name
// immediately.
func (h *Handler) UpdateProfile(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := logging.FromContext(ctx)

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, domain.AuthResult{Error: err.Error()})
		return
	}

	sess := middleware.SessionFromContext(c)
	grant, err := h.auth.UpdateProfile(ctx, sess, req.Name)
	if err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Profile update failed")

		status := http.StatusOK
		if errors.Is(err, logicv1.ErrNotAuthenticated) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, domain.AuthResult{Error: failureMessage(err, msgProfileFailed)})
		return
	}

	h.sessions.Write(c, grant.Token, grant.ExpiresAt)
	logger.Info().Str("user_id", grant.Session.UserID).Msg("Profile updated")

	c.JSON(http.StatusOK, domain.AuthResult{Success: true})
}

// sessionView is the /auth/session response shape. Role is a pointer so
// an onboarding user serializes as null, matching the backend contract.
type sessionView struct {
	User struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Email string  `json:"email"`
		Role  *string `json:"role"`
	} `json:"user"`
	ExpiresAt string `json:"expiresAt"`
}

// GetSession handles GET /auth/session: the resolved session for the
// current request, or 401 for anonymous visitors.
func (h *Handler) GetSession(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgNotAuthenticated})
		return
	}

	var view sessionView
	view.User.ID = sess.UserID
	view.User.Name = sess.Name
	view.User.Email = sess.Email
	if sess.Role != domain.RoleNone {
		role := string(sess.Role)
		view.User.Role = &role
	}
	view.ExpiresAt = sess.ExpiresAt.UTC().Format(time.RFC3339)

	c.JSON(http.StatusOK, view)
}
