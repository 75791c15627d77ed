package auth

import (
	"time"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// NewRateLimiter returns middleware that allows perMinute requests per client
// IP with the given burst. Limiter state is kept in memory.
func NewRateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			return errcodes.Forbidden("Identifying the client")
		},
		DenyHandler: func(_ echo.Context, _ string, _ error) error {
			return errcodes.TooManyRequests()
		},
	})
}
