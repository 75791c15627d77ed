package auth

import (
	"net/http"
	"net/url"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/labstack/echo/v4"
)

// LoginPath is where RequireLogin sends anonymous page visitors.
const LoginPath = "/login"

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate extracts and validates the JWT from the cookie.
// If valid, it verifies the user is still active and adds user info to the context.
// If not authenticated, it returns 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.userFromCookie(c)
		if err != nil {
			return err
		}
		setUser(c, user)
		return next(c)
	}
}

// AuthenticateOptional extracts user info if available but doesn't require authentication.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if user, err := m.userFromCookie(c); err == nil {
			setUser(c, user)
		}
		return next(c)
	}
}

// RequireLogin is the page counterpart of Authenticate. Anonymous visitors are
// redirected to the login page with the original URL in ?next=.
func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.userFromCookie(c)
		if err != nil {
			ClearSessionCookie(c)
			target := LoginPath + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
			return c.Redirect(http.StatusFound, target)
		}
		setUser(c, user)
		return next(c)
	}
}

func (m *Middleware) userFromCookie(c echo.Context) (*models.User, error) {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, errcodes.Unauthorized("Authentication required")
	}

	claims, err := m.authService.ValidateToken(cookie.Value)
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid or expired token")
	}

	// Verify user still exists and is active
	user, err := m.authService.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, errcodes.Unauthorized("User not found or inactive")
	}

	return user, nil
}

func setUser(c echo.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("username", user.Username)
	c.Set("user", user)
}

// CurrentUser returns the user stored by one of the middlewares, or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get("user").(*models.User)
	return user
}

// GetUserIDFromContext retrieves the user ID from the Echo context.
func GetUserIDFromContext(c echo.Context) (int, bool) {
	userID, ok := c.Get("user_id").(int)
	return userID, ok
}
