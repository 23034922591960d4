// Package session owns the local session token: a signed JWT carried in
// an HTTP cookie. The token embeds the backend's user fields and access
// token; it is issued at login, reissued only by the role-assignment and
// profile-update flows, and cleared at logout. Navigation never extends
// its lifetime.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cliphub/gateway/internal/core/domain"
)

// ErrInvalidToken indicates a token that failed signature or claims
// validation. Callers treat it the same as an absent session.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the JWT claims set for the session cookie. Subject carries
// the user id.
type Claims struct {
	jwt.RegisteredClaims
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	AccessToken string      `json:"accessToken"`
}

// Store signs and verifies session tokens and manages the cookie that
// carries them.
type Store struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
}

// New creates a Store. ttl is the session lifetime from issuance.
func New(secret string, ttl time.Duration, cookieName string, secure bool) *Store {
	return &Store{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Issue signs a fresh token for the given session and returns it
// together with its expiry. The expiry is always a full TTL from now;
// reissuing (role assignment, profile update) therefore renews the
// session.
func (s *Store) Issue(sess *domain.Session) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:        sess.Name,
		Email:       sess.Email,
		Role:        sess.Role,
		AccessToken: sess.AccessToken,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies a token string and returns the session it carries.
// Any failure — bad signature, malformed token, expiry — returns
// ErrInvalidToken so the caller resolves to the anonymous state.
func (s *Store) Parse(tokenString string) (*domain.Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &domain.Session{
		UserID:      claims.Subject,
		Name:        claims.Name,
		Email:       claims.Email,
		Role:        claims.Role,
		AccessToken: claims.AccessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Resolve reads the session cookie from the request and returns the
// session it carries, or nil for anonymous. Malformed and expired
// tokens resolve to nil — fail closed, never open.
func (s *Store) Resolve(r *http.Request) *domain.Session {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sess, err := s.Parse(cookie.Value)
	if err != nil {
		return nil
	}
	return sess
}

// Write sets the session cookie on the response.
func (s *Store) Write(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetCookie(s.cookieName, token, maxAge, "/", "", s.secure, true)
}

// Clear removes the session cookie.
func (s *Store) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
}
