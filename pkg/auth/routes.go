package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers the session endpoints on g. Login is
// wrapped with limiter, and /me requires an authenticated session.
func RegisterRoutesWithGroup(g *echo.Group, authService *Service, limiter echo.MiddlewareFunc) *Middleware {
	authMiddleware := NewMiddleware(authService)

	h := &handler{
		authService: authService,
	}

	g.POST("/login", h.login, limiter)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me, authMiddleware.Authenticate)

	return authMiddleware
}
