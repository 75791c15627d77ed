package bookshelves

import (
	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers bookshelf routes on g. Every route
// requires an authenticated user.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	bookshelfService := NewService(db)

	h := &handler{
		bookshelfService: bookshelfService,
	}

	g.Use(authMiddleware.Authenticate)
	g.GET("", h.retrieve)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:id", h.updateTag)
	g.DELETE("/books/:bookId", h.removeBook)

	return bookshelfService
}
