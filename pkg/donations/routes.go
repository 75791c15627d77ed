package donations

import (
	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers donation routes on g. Every route requires
// an authenticated user.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	donationService := NewService(db)

	h := &handler{
		donationService: donationService,
	}

	g.Use(authMiddleware.Authenticate)
	g.GET("/mine", h.myListings)
	g.GET("/requests", h.pendingRequests)
	g.GET("/browse", h.browse)
	g.POST("", h.addListing)
	g.DELETE("/books/:bookId", h.deleteListing)
	g.POST("/:id/request", h.transition((*Service).Request, "requested"))
	g.POST("/:id/cancel", h.transition((*Service).Cancel, "cancelled"))
	g.POST("/:id/approve", h.transition((*Service).Approve, "approved"))
	g.POST("/:id/reject", h.transition((*Service).Reject, "rejected"))

	return donationService
}
