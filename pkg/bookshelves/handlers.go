package bookshelves

import (
	"net/http"
	"strconv"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookshelfService *Service
}

func currentUser(c echo.Context) (*models.User, error) {
	user, ok := c.Get("user").(*models.User)
	if !ok {
		return nil, errcodes.Unauthorized("Authentication required")
	}
	return user, nil
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListItemsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	opts := ListItemsOptions{}
	if params.Tag != nil {
		tag, err := ParseTag(params.Tag)
		if err != nil {
			return err
		}
		opts.Tag = &tag
	}

	shelf, err := h.bookshelfService.GetOrCreateForUser(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}
	opts.BookshelfID = shelf.ID

	items, err := h.bookshelfService.ListItems(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, BookshelfResponse{
		Bookshelf: shelf,
		Items:     items,
	}))
}

func (h *handler) addItem(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(c.Request().Context())

	params := AddItemPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	tag, err := ParseTag(params.Tag)
	if err != nil {
		return err
	}

	shelf, err := h.bookshelfService.GetOrCreateForUser(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	item, created, err := h.bookshelfService.AddOrUpdateItem(ctx, AddOrUpdateItemOptions{
		BookshelfID: shelf.ID,
		BookID:      params.BookID,
		Tag:         tag,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	log.Debug("bookshelf item saved", logger.Data{"item_id": item.ID, "created": created})

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return errors.WithStack(c.JSON(status, AddItemResponse{
		Created: created,
		Item:    item,
	}))
}

func (h *handler) updateTag(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Item")
	}

	params := UpdateTagPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	tag, err := ParseTag(params.Tag)
	if err != nil {
		return err
	}

	item, err := h.bookshelfService.UpdateTag(ctx, UpdateTagOptions{
		ItemID: id,
		UserID: user.ID,
		Tag:    tag,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, UpdateTagResponse{
		Success: true,
		Item:    item,
	}))
}

func (h *handler) removeBook(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.bookshelfService.RemoveBook(ctx, user.ID, bookID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
