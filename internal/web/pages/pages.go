// Package pages serves the navigable areas of the application. Every
// handler here runs behind the authorization middleware, so reaching
// one means the navigation was allowed; the handlers only render.
// Rendering is a minimal page descriptor — the visual layer lives
// elsewhere.
package pages

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cliphub/gateway/internal/core/domain"
	"github.com/cliphub/gateway/middleware"
)

type page struct {
	Page string    `json:"page"`
	Area string    `json:"area,omitempty"`
	User *pageUser `json:"user,omitempty"`
}

type pageUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

func render(c *gin.Context, name, area string) {
	p := page{Page: name, Area: area}
	if sess := middleware.SessionFromContext(c); sess != nil {
		p.User = &pageUser{ID: sess.UserID, Name: sess.Name, Role: string(sess.Role)}
	}
	c.JSON(http.StatusOK, p)
}

func Login(c *gin.Context)          { render(c, "login", "") }
func Signup(c *gin.Context)         { render(c, "signup", "") }
func ForgotPassword(c *gin.Context) { render(c, "forgot-password", "") }
func ResetPassword(c *gin.Context)  { render(c, "reset-password", "") }

// Onboarding is the one-time role selection step between signup and
// first use of a role-scoped area.
func Onboarding(c *gin.Context) { render(c, "onboarding", "") }

func ClipperDashboard(c *gin.Context) { render(c, "dashboard", string(domain.RoleClipper)) }
func ClipperAccount(c *gin.Context)   { render(c, "account", string(domain.RoleClipper)) }

func BusinessDashboard(c *gin.Context) { render(c, "dashboard", string(domain.RoleBusiness)) }
func BusinessAccount(c *gin.Context)   { render(c, "account", string(domain.RoleBusiness)) }

// RegisterRoutes wires all page routes. The root path is registered
// too, but the authorization middleware always redirects it before the
// handler runs; the handler exists so the route is matched rather than
// 404ing if the middleware chain changes.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) { render(c, "root", "") })

	r.GET("/login", Login)
	r.GET("/signup", Signup)
	r.GET("/forgot-password", ForgotPassword)
	r.GET("/reset-password", ResetPassword)

	r.GET("/onboarding", Onboarding)

	r.GET("/clipper", ClipperDashboard)
	r.GET("/clipper/account", ClipperAccount)

	r.GET("/business", BusinessDashboard)
	r.GET("/business/account", BusinessAccount)
}
