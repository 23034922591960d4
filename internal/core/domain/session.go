package domain

import "time"

// Role classifies an authenticated user. RoleNone means the user has
// authenticated but has not completed onboarding yet. An anonymous
// visitor is represented by the absence of a Session (nil), never by a
// Session with RoleNone.
type Role string

const (
	RoleNone     Role = ""
	RoleClipper  Role = "clipper"
	RoleBusiness Role = "business"
)

// ParseRole maps the backend's nullable role string onto a Role.
// Unknown values resolve to RoleNone so an unrecognized role can never
// widen access.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleClipper:
		return RoleClipper
	case RoleBusiness:
		return RoleBusiness
	default:
		return RoleNone
	}
}

// Assignable reports whether r is a role a user may choose during
// onboarding.
func (r Role) Assignable() bool {
	return r == RoleClipper || r == RoleBusiness
}

// Session is the authenticated principal carried by the session cookie.
// It is created at login/signup/social-callback, mutated only by the
// role-assignment and profile-update flows, and destroyed at logout or
// expiry.
type Session struct {
	UserID      string
	Name        string
	Email       string
	Role        Role
	AccessToken string
	ExpiresAt   time.Time
}

// AuthResult is the normalized outcome of an authentication flow,
// returned to the caller at the action boundary. Expected failures are
// carried in Error; they are never raised as panics or leaked as raw
// transport errors.
type AuthResult struct {
	Success            bool   `json:"success"`
	Error              string `json:"error,omitempty"`
	RequiresOnboarding bool   `json:"requiresOnboarding,omitempty"`
	RedirectTo         string `json:"redirectTo,omitempty"`
}
