package auth

import (
	"net/http"
	"time"

	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/labstack/echo/v4"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "campusshelf_session"
	// CookieMaxAge is how long the cookie is valid.
	CookieMaxAge = TokenExpiry
)

// StartSession signs a token for user and stores it in the session cookie.
func (s *Service) StartSession(c echo.Context, user *models.User) error {
	token, err := s.GenerateToken(user)
	if err != nil {
		return err
	}
	c.SetCookie(sessionCookie(c, token, int(CookieMaxAge.Seconds())))
	return nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(sessionCookie(c, "", -1))
}

func sessionCookie(c echo.Context, value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   IsSecureRequest(c),
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}

// IsSecureRequest reports whether the request arrived over TLS, directly or
// through a proxy.
func IsSecureRequest(c echo.Context) bool {
	return c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https"
}
