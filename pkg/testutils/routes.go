// Package testutils provides test-only API endpoints for seeding and
// resetting data. These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/campusshelf/campusshelf/pkg/books"
	"github.com/campusshelf/campusshelf/pkg/donations"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		db:              db,
		bookService:     books.NewService(db),
		donationService: donations.NewService(db),
	}

	test := e.Group("/test")
	test.POST("/users", h.createUser)
	test.POST("/books", h.createBook)
	test.POST("/listings", h.createListing)
	test.DELETE("/data", h.reset)
}
