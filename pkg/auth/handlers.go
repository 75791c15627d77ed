package auth

import (
	"net/http"

	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	MsgLoginSuccessful = "Login successful!"
	MsgLoggedOut       = "You have been logged out successfully."
)

type handler struct {
	authService *Service
}

// NewUserResponse builds the account summary for user. The join date is only
// included when withJoined is set.
func NewUserResponse(user *models.User, withJoined bool) UserResponse {
	resp := UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
	if withJoined {
		joined := user.CreatedAt
		resp.DateJoined = &joined
	}
	return resp
}

// login handles user login.
func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Authenticate(ctx, params.Username, params.Password)
	if err != nil {
		return err
	}

	if err := h.authService.StartSession(c, user); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, LoginResponse{
		Message: MsgLoginSuccessful,
		User:    NewUserResponse(user, false),
	}))
}

// logout handles user logout.
func (h *handler) logout(c echo.Context) error {
	ClearSessionCookie(c)
	return errors.WithStack(c.JSON(http.StatusOK, MessageResponse{Message: MsgLoggedOut}))
}

// me returns the current authenticated user's info.
func (h *handler) me(c echo.Context) error {
	user := c.Get("user").(*models.User)
	return errors.WithStack(c.JSON(http.StatusOK, NewUserResponse(user, true)))
}
