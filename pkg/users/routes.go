package users

import (
	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers signup and account routes on g.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware, limiter echo.MiddlewareFunc) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	g.POST("/signup", h.signup, limiter)

	users := g.Group("/users")
	users.Use(authMiddleware.Authenticate)
	users.POST("/me/password", h.changePassword)
	users.GET("/:id", h.retrieve)

	return userService
}
