// Package v1 orchestrates the authentication flows between the session
// cookie and the external backend API.
//
// Error Handling:
// This package defines sentinel errors for the expected failure modes of
// each flow. They are wrapped with context using fmt.Errorf("%w") and
// mapped to user-facing messages at the web boundary with errors.Is.
// Failures the backend itself reports arrive as *domain.APIError and
// carry the backend's message; anything else (transport failure,
// malformed response, timeout) is a plain error and surfaces as a
// generic message, never as internals.
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrNotAuthenticated):
//	    c.JSON(http.StatusUnauthorized, domain.AuthResult{Error: "Not authenticated"})
//	case errors.As(err, &apiErr):
//	    c.JSON(http.StatusOK, domain.AuthResult{Error: apiErr.Message})
//	default:
//	    c.JSON(http.StatusOK, domain.AuthResult{Error: "An unexpected error occurred"})
//	}
package v1

import "errors"

// Sentinel errors for the authentication flows.
var (
	// ErrNotAuthenticated indicates a flow that requires a session was
	// invoked without one (or without an access token). No backend call
	// is made in that case.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRoleAlreadyAssigned indicates a role-assignment attempt on a
	// session whose role is already set. Role assignment is one-way and
	// one-time; repeat attempts are rejected rather than ignored.
	ErrRoleAlreadyAssigned = errors.New("role already assigned")

	// ErrInvalidRole indicates a role value outside the assignable set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrUnknownProvider indicates a social login attempt with a
	// provider the gateway does not support.
	ErrUnknownProvider = errors.New("unknown social provider")
)
