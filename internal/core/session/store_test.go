package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliphub/gateway/internal/core/domain"
)

func newTestStore(ttl time.Duration) *Store {
	return New("test-secret", ttl, "gateway_session", false)
}

func testSession() *domain.Session {
	return &domain.Session{
		UserID:      "42",
		Name:        "Test User",
		Email:       "user@example.com",
		Role:        domain.RoleClipper,
		AccessToken: "backend-bearer-token",
	}
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	store := newTestStore(60 * time.Hour)
	sess := testSession()

	token, expiresAt, err := store.Issue(sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(60*time.Hour), expiresAt, time.Minute)

	got, err := store.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, sess.Name, got.Name)
	assert.Equal(t, sess.Email, got.Email)
	assert.Equal(t, sess.Role, got.Role)
	assert.Equal(t, sess.AccessToken, got.AccessToken)
	assert.WithinDuration(t, expiresAt, got.ExpiresAt, time.Second)
}

func TestParseRoundTripsNullRole(t *testing.T) {
	t.Parallel()

	store := newTestStore(time.Hour)
	sess := testSession()
	sess.Role = domain.RoleNone

	token, _, err := store.Issue(sess)
	require.NoError(t, err)

	got, err := store.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleNone, got.Role)
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	store := newTestStore(-time.Second)
	token, _, err := store.Issue(testSession())
	require.NoError(t, err)

	_, err = store.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := newTestStore(time.Hour).Issue(testSession())
	require.NoError(t, err)

	other := New("other-secret", time.Hour, "gateway_session", false)
	_, err = other.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	store := newTestStore(time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		_, err := store.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	store := newTestStore(time.Hour)
	token, _, err := store.Issue(testSession())
	require.NoError(t, err)

	t.Run("valid cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/clipper", nil)
		r.AddCookie(&http.Cookie{Name: "gateway_session", Value: token})

		sess := store.Resolve(r)
		require.NotNil(t, sess)
		assert.Equal(t, "42", sess.UserID)
		assert.Equal(t, domain.RoleClipper, sess.Role)
	})

	t.Run("no cookie resolves to anonymous", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/clipper", nil)
		assert.Nil(t, store.Resolve(r))
	})

	t.Run("tampered cookie resolves to anonymous", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/clipper", nil)
		r.AddCookie(&http.Cookie{Name: "gateway_session", Value: token + "x"})
		assert.Nil(t, store.Resolve(r))
	})

	t.Run("expired cookie resolves to anonymous", func(t *testing.T) {
		expired := newTestStore(-time.Minute)
		tok, _, err := expired.Issue(testSession())
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/clipper", nil)
		r.AddCookie(&http.Cookie{Name: "gateway_session", Value: tok})
		assert.Nil(t, store.Resolve(r))
	})
}
