package users

import (
	"net/http"
	"strconv"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	userService *Service
}

func (h *handler) signup(c echo.Context) error {
	ctx := c.Request().Context()

	params := SignupPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Create(ctx, CreateUserOptions(params))
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, SignupResponse{
		Message: MsgAccountCreated,
		User: UserResponse{
			ID:         user.ID,
			Username:   user.Username,
			Email:      user.Email,
			DateJoined: user.CreatedAt,
		},
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	user, err := h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, ProfileResponse{
		ID:         user.ID,
		Username:   user.Username,
		DateJoined: user.CreatedAt,
	}))
}

func (h *handler) changePassword(c echo.Context) error {
	ctx := c.Request().Context()

	params := ChangePasswordPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user := c.Get("user").(*models.User)

	err := h.userService.ChangePassword(ctx, user, ChangePasswordOptions(params))
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
