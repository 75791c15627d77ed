package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/campusshelf/campusshelf/pkg/binder"
	"github.com/campusshelf/campusshelf/pkg/books"
	"github.com/campusshelf/campusshelf/pkg/bookshelves"
	"github.com/campusshelf/campusshelf/pkg/config"
	"github.com/campusshelf/campusshelf/pkg/donations"
	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/pages"
	"github.com/campusshelf/campusshelf/pkg/testutils"
	"github.com/campusshelf/campusshelf/pkg/users"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := NewEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// NewEcho builds the router with every API and page route registered.
func NewEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()
		},
	}))
	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())

	health.RegisterRoutes(e)

	limiter := auth.NewRateLimiter(cfg.AuthRateLimitPerMinute, cfg.AuthRateLimitBurst)
	authService := auth.NewService(db, cfg.JWTSecret)

	api := e.Group("/api")
	authMiddleware := auth.RegisterRoutesWithGroup(api, authService, limiter)
	users.RegisterRoutesWithGroup(api, db, authMiddleware, limiter)
	books.RegisterRoutesWithGroup(api.Group("/books", authMiddleware.Authenticate), db)
	bookshelves.RegisterRoutesWithGroup(api.Group("/bookshelf"), db, authMiddleware)
	donations.RegisterRoutesWithGroup(api.Group("/donations"), db, authMiddleware)

	pages.RegisterRoutes(e, db, authService, authMiddleware, limiter)

	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().WithHTMLRenderer(pages.RenderError).Handle

	return e, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
