package books

import (
	"net/http"
	"strconv"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/search"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.Retrieve(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.bookService.List(ctx, ListBooksOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ListBooksResponse{books}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(c.Request().Context())

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.Create(ctx, CreateBookOptions(params))
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("book registered", logger.Data{"book_id": book.ID, "has_isbn": book.ISBN != nil})

	return errors.WithStack(c.JSON(http.StatusCreated, CreateBookResponse{
		Success: true,
		Book:    book,
	}))
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, mode, err := h.bookService.Search(ctx, SearchBooksOptions{
		Mode: params.Mode,
		Criteria: search.Criteria{
			Query:  params.Query,
			Title:  params.Title,
			Author: params.Author,
			Course: params.Course,
		},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, SearchBooksResponse{
		Books: books,
		Count: len(books),
		Mode:  string(mode),
	}))
}
