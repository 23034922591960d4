// Package routing decides, for every inbound navigation, whether the
// request passes through or is redirected. The decision is a pure
// function of the request path and the resolved session; it performs no
// I/O and never mutates session state.
package routing

import (
	"strings"

	"github.com/cliphub/gateway/internal/core/domain"
)

// Navigation targets.
const (
	PathRoot         = "/"
	PathLogin        = "/login"
	PathSignup       = "/signup"
	PathOnboarding   = "/onboarding"
	PathClipperHome  = "/clipper"
	PathBusinessHome = "/business"
)

// Class is the static classification of a request path. The sets are
// disjoint by convention; a path matches at most one class.
type Class int

const (
	// ClassUnclassified covers every path with no recognized prefix.
	// Such paths are allowed through: the gate is a blocklist of
	// protected patterns, not an allowlist.
	ClassUnclassified Class = iota
	ClassPublic
	ClassOnboarding
	ClassClipper
	ClassBusiness
)

var publicPrefixes = []string{PathLogin, PathSignup}

// excludedPrefixes are internal surfaces that bypass authorization
// entirely: the auth API itself, ops endpoints and static assets.
var excludedPrefixes = []string{"/api", "/health", "/ready", "/metrics", "/static"}

// Excluded reports whether the path bypasses authorization. Paths
// containing a dot are asset files and are excluded as well.
func Excluded(path string) bool {
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return strings.Contains(path, ".")
}

// Classify maps a path onto its Class by prefix matching.
func Classify(path string) Class {
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return ClassPublic
		}
	}
	switch {
	case strings.HasPrefix(path, PathOnboarding):
		return ClassOnboarding
	case strings.HasPrefix(path, PathClipperHome):
		return ClassClipper
	case strings.HasPrefix(path, PathBusinessHome):
		return ClassBusiness
	default:
		return ClassUnclassified
	}
}

// HomePath returns the landing path for a role: onboarding until a role
// is assigned, then the role's dashboard.
func HomePath(role domain.Role) string {
	switch role {
	case domain.RoleClipper:
		return PathClipperHome
	case domain.RoleBusiness:
		return PathBusinessHome
	default:
		return PathOnboarding
	}
}
