package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cliphub/gateway/internal/core/domain"
	"github.com/cliphub/gateway/internal/core/session"
	"github.com/cliphub/gateway/internal/routing"
)

// sessionContextKey is the gin context key the resolved session is
// stored under.
const sessionContextKey = "session"

// AuthorizationMiddleware resolves the session cookie and evaluates the
// routing decision on every navigation. The decision is recomputed per
// request — session state can change between any two navigations via
// login, logout or role assignment, so nothing is cached.
//
// A token that fails to resolve is treated as no session at all.
func AuthorizationMiddleware(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := store.Resolve(c.Request)
		if sess != nil {
			c.Set(sessionContextKey, sess)
		}

		decision := routing.Decide(c.Request.URL.Path, sess)
		if !decision.Allow {
			CountAuthRedirect(decision.Location)
			zerolog.Ctx(c.Request.Context()).Debug().
				Str("path", c.Request.URL.Path).
				Str("redirect", decision.Location).
				Bool("authenticated", sess != nil).
				Msg("Navigation redirected")
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
			return
		}

		c.Next()
	}
}

// SessionFromContext returns the session resolved by
// AuthorizationMiddleware, or nil for anonymous requests.
func SessionFromContext(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, ok := v.(*domain.Session)
	if !ok {
		return nil
	}
	return sess
}
