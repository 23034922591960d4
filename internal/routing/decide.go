package routing

import "github.com/cliphub/gateway/internal/core/domain"

// Decision is the outcome of evaluating one navigation. A zero Location
// means the request passes through unmodified.
type Decision struct {
	Allow    bool
	Location string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(to string) Decision {
	return Decision{Location: to}
}

// Decide evaluates the authorization rules for one navigation. sess is
// nil for anonymous visitors, including any request whose session token
// failed to resolve.
//
// The rules form a priority-ordered decision table; the first matching
// rule wins and later rules are not consulted. Every input reaches
// exactly one outcome.
func Decide(path string, sess *domain.Session) Decision {
	// Internal surfaces and assets skip all checks.
	if Excluded(path) {
		return allow()
	}

	class := Classify(path)
	authenticated := sess != nil

	// Authenticated users have no business on login/signup; send them
	// to wherever their role says home is.
	if authenticated && class == ClassPublic {
		return redirect(HomePath(sess.Role))
	}

	// Everything gated requires a session.
	if !authenticated && (class == ClassOnboarding || class == ClassClipper || class == ClassBusiness) {
		return redirect(PathLogin)
	}

	// Onboarding is one-time; a user with a role is done with it.
	if authenticated && class == ClassOnboarding && sess.Role != domain.RoleNone {
		return redirect(HomePath(sess.Role))
	}

	// No role yet: role-scoped areas are off limits until onboarding.
	if authenticated && sess.Role == domain.RoleNone && (class == ClassClipper || class == ClassBusiness) {
		return redirect(PathOnboarding)
	}

	// Cross-role access bounces back to the user's own dashboard.
	if authenticated && sess.Role == domain.RoleClipper && class == ClassBusiness {
		return redirect(PathClipperHome)
	}
	if authenticated && sess.Role == domain.RoleBusiness && class == ClassClipper {
		return redirect(PathBusinessHome)
	}

	// The root path is never served directly; it fans out by state.
	if path == PathRoot {
		if !authenticated {
			return redirect(PathLogin)
		}
		return redirect(HomePath(sess.Role))
	}

	// Unclassified paths are public by default.
	return allow()
}
