package pages

import (
	"net/http"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	csrfCookieName = "campusshelf_csrf"
	csrfFormField  = "csrf_token"
	csrfContextKey = "csrf"
)

// htmlErrors flags the request so the error handler renders an HTML page
// instead of JSON.
func htmlErrors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(errcodes.HTMLContextKey, true)
		return next(c)
	}
}

// csrfProtection checks the token posted with every page form against the
// CSRF cookie.
func csrfProtection() echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfFormField,
		ContextKey:     csrfContextKey,
		CookieName:     csrfCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(csrfContextKey).(string)
	return token
}
