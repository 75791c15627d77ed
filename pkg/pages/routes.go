package pages

import (
	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/campusshelf/campusshelf/pkg/books"
	"github.com/campusshelf/campusshelf/pkg/bookshelves"
	"github.com/campusshelf/campusshelf/pkg/donations"
	"github.com/campusshelf/campusshelf/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the server-rendered pages. Pages render errors as
// HTML, check the CSRF token on every form post and load the session user
// when there is one. limiter guards the signup and login forms.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authService *auth.Service, authMiddleware *auth.Middleware, limiter echo.MiddlewareFunc) {
	h := &handler{
		authService:      authService,
		userService:      users.NewService(db),
		bookService:      books.NewService(db),
		bookshelfService: bookshelves.NewService(db),
		donationService:  donations.NewService(db),
	}

	base := []echo.MiddlewareFunc{htmlErrors, csrfProtection(), authMiddleware.AuthenticateOptional}
	with := func(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		mw := make([]echo.MiddlewareFunc, 0, len(base)+len(extra))
		return append(append(mw, base...), extra...)
	}
	login := with(authMiddleware.RequireLogin)

	e.GET("/", h.landing, with()...)
	e.GET("/signup", h.signupForm, with()...)
	e.POST("/signup", h.signup, with(limiter)...)
	e.GET("/login", h.loginForm, with()...)
	e.POST("/login", h.login, with(limiter)...)
	e.POST("/logout", h.logout, with()...)

	e.GET("/books", h.bookList, login...)
	e.GET("/books/register", h.registerForm, login...)
	e.POST("/books/register", h.register, login...)
	e.GET("/books/search", h.search, login...)

	e.GET("/bookshelf", h.bookshelf, login...)
	e.POST("/bookshelf/add", h.addToBookshelf, login...)
	e.POST("/bookshelf/items/:id/tag", h.updateBookshelfTag, login...)
	e.POST("/bookshelf/remove/:bookId", h.removeFromBookshelf, login...)

	e.GET("/donations/my-listings", h.myListings, login...)
	e.GET("/donations/pending-requests", h.pendingRequests, login...)
	e.GET("/donations/browse", h.browseDonations, login...)
	e.POST("/donations/add", h.addListing, login...)
	e.POST("/donations/delete", h.deleteListing, login...)
	e.POST("/donations/request", h.donationAction((*donations.Service).Request, "Your request was sent to the donor.", "/donations/pending-requests"), login...)
	e.POST("/donations/cancel", h.donationAction((*donations.Service).Cancel, "Your request was cancelled.", "/donations/pending-requests"), login...)
	e.POST("/donations/approve", h.donationAction((*donations.Service).Approve, "Donation approved.", "/donations/my-listings"), login...)
	e.POST("/donations/reject", h.donationAction((*donations.Service).Reject, "Request rejected.", "/donations/my-listings"), login...)
}
