package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliphub/gateway/internal/core/domain"
)

func anon() *domain.Session { return nil }

func authed(role domain.Role) *domain.Session {
	return &domain.Session{
		UserID:      "42",
		Name:        "Test User",
		Email:       "user@example.com",
		Role:        role,
		AccessToken: "backend-token",
	}
}

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		sess     *domain.Session
		allow    bool
		location string
	}{
		// Excluded surfaces skip everything, whatever the session state.
		{"api path anonymous", "/api/v1/auth/login", anon(), true, ""},
		{"api path authenticated", "/api/v1/auth/session", authed(domain.RoleClipper), true, ""},
		{"metrics", "/metrics", anon(), true, ""},
		{"asset file", "/favicon.ico", anon(), true, ""},
		{"nested asset", "/static/js/app.js", anon(), true, ""},

		// Authenticated users bounce off login/signup to their home.
		{"clipper visits login", PathLogin, authed(domain.RoleClipper), false, PathClipperHome},
		{"business visits signup", PathSignup, authed(domain.RoleBusiness), false, PathBusinessHome},
		{"roleless visits login", PathLogin, authed(domain.RoleNone), false, PathOnboarding},

		// Anonymous visitors may not enter anything gated.
		{"anonymous visits onboarding", PathOnboarding, anon(), false, PathLogin},
		{"anonymous visits clipper", PathClipperHome, anon(), false, PathLogin},
		{"anonymous visits business dashboard", "/business/dashboard", anon(), false, PathLogin},

		// Onboarding is closed once a role exists.
		{"clipper visits onboarding", PathOnboarding, authed(domain.RoleClipper), false, PathClipperHome},
		{"business visits onboarding", PathOnboarding, authed(domain.RoleBusiness), false, PathBusinessHome},

		// No role means no role-scoped area.
		{"roleless visits clipper", PathClipperHome, authed(domain.RoleNone), false, PathOnboarding},
		{"roleless visits business", PathBusinessHome, authed(domain.RoleNone), false, PathOnboarding},

		// Cross-role access goes back to the user's own dashboard.
		{"clipper visits business", PathBusinessHome, authed(domain.RoleClipper), false, PathClipperHome},
		{"clipper visits business subpage", "/business/campaigns", authed(domain.RoleClipper), false, PathClipperHome},
		{"business visits clipper account", "/clipper/account", authed(domain.RoleBusiness), false, PathBusinessHome},

		// Root always fans out by state.
		{"root anonymous", PathRoot, anon(), false, PathLogin},
		{"root roleless", PathRoot, authed(domain.RoleNone), false, PathOnboarding},
		{"root clipper", PathRoot, authed(domain.RoleClipper), false, PathClipperHome},
		{"root business", PathRoot, authed(domain.RoleBusiness), false, PathBusinessHome},

		// Allowed navigations.
		{"anonymous visits login", PathLogin, anon(), true, ""},
		{"anonymous visits signup", PathSignup, anon(), true, ""},
		{"roleless visits onboarding", PathOnboarding, authed(domain.RoleNone), true, ""},
		{"clipper visits clipper", PathClipperHome, authed(domain.RoleClipper), true, ""},
		{"clipper visits clipper account", "/clipper/account", authed(domain.RoleClipper), true, ""},
		{"business visits business", PathBusinessHome, authed(domain.RoleBusiness), true, ""},

		// Unclassified paths are public by default.
		{"unclassified anonymous", "/about", anon(), true, ""},
		{"unclassified authenticated", "/terms", authed(domain.RoleClipper), true, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := Decide(tt.path, tt.sess)
			require.Equal(t, tt.allow, d.Allow, "allow mismatch")
			assert.Equal(t, tt.location, d.Location, "location mismatch")
		})
	}
}

// Running the decision twice must yield the same result: the function
// reads session state and nothing else.
func TestDecideIsIdempotent(t *testing.T) {
	t.Parallel()

	paths := []string{PathRoot, PathLogin, PathOnboarding, PathClipperHome, PathBusinessHome, "/about"}
	sessions := []*domain.Session{nil, authed(domain.RoleNone), authed(domain.RoleClipper), authed(domain.RoleBusiness)}

	for _, p := range paths {
		for _, s := range sessions {
			first := Decide(p, s)
			second := Decide(p, s)
			require.Equal(t, first, second, "path %q", p)
		}
	}
}

// Decide must not mutate the session it reads.
func TestDecideDoesNotMutateSession(t *testing.T) {
	t.Parallel()

	sess := authed(domain.RoleClipper)
	before := *sess

	Decide(PathBusinessHome, sess)
	Decide(PathLogin, sess)
	Decide(PathRoot, sess)

	assert.Equal(t, before, *sess)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Class
	}{
		{PathLogin, ClassPublic},
		{PathSignup, ClassPublic},
		{PathOnboarding, ClassOnboarding},
		{PathClipperHome, ClassClipper},
		{"/clipper/account", ClassClipper},
		{PathBusinessHome, ClassBusiness},
		{"/business/dashboard", ClassBusiness},
		{PathRoot, ClassUnclassified},
		{"/about", ClassUnclassified},
		{"/forgot-password", ClassUnclassified},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.path), "path %q", tt.path)
	}
}

func TestExcluded(t *testing.T) {
	t.Parallel()

	assert.True(t, Excluded("/api/v1/auth/login"))
	assert.True(t, Excluded("/health"))
	assert.True(t, Excluded("/ready"))
	assert.True(t, Excluded("/metrics"))
	assert.True(t, Excluded("/static/css/main.css"))
	assert.True(t, Excluded("/robots.txt"))

	assert.False(t, Excluded(PathLogin))
	assert.False(t, Excluded(PathClipperHome))
	assert.False(t, Excluded(PathRoot))
}

func TestHomePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PathOnboarding, HomePath(domain.RoleNone))
	assert.Equal(t, PathClipperHome, HomePath(domain.RoleClipper))
	assert.Equal(t, PathBusinessHome, HomePath(domain.RoleBusiness))
}
