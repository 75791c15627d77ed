package testutils

import (
	"context"
	"net/http"
	"time"

	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/campusshelf/campusshelf/pkg/books"
	"github.com/campusshelf/campusshelf/pkg/donations"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db              *bun.DB
	bookService     *books.Service
	donationService *donations.Service
}

// createUserRequest is the request body for creating a test user.
type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email"`
}

// createUserResponse is the response body for creating a test user.
type createUserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// createUser creates an active user without running the signup policy checks.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	email := req.Email
	if email == "" {
		email = req.Username + "@example.edu"
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     req.Username,
		Email:        email,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}
	_, err = h.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	return errors.WithStack(c.JSON(http.StatusCreated, createUserResponse{
		ID:       user.ID,
		Username: user.Username,
	}))
}

type createBookRequest struct {
	Title  string  `json:"title" validate:"required"`
	Author string  `json:"author" validate:"required"`
	Course string  `json:"course" validate:"required"`
	ISBN   *string `json:"isbn"`
}

// createBook registers a book through the regular book service.
// POST /test/books.
func (h *handler) createBook(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.Create(ctx, books.CreateBookOptions{
		Title:  req.Title,
		Author: req.Author,
		Course: req.Course,
		ISBN:   req.ISBN,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

type createListingRequest struct {
	BookID  int `json:"book_id" validate:"required,min=1"`
	DonorID int `json:"donor_id" validate:"required,min=1"`
}

// createListing lists a book for donation on behalf of any donor.
// POST /test/listings.
func (h *handler) createListing(c echo.Context) error {
	ctx := c.Request().Context()

	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	listing, err := h.donationService.AddListing(ctx, donations.ListingOptions{
		BookID:  req.BookID,
		DonorID: req.DonorID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, listing))
}

// resetResponse reports how many rows were removed per table.
type resetResponse struct {
	Deleted map[string]int `json:"deleted"`
}

// reset deletes every row the application owns, children first.
// DELETE /test/data.
func (h *handler) reset(c echo.Context) error {
	ctx := c.Request().Context()

	tables := []struct {
		name  string
		model interface{}
	}{
		{"donation_listings", (*models.DonationListing)(nil)},
		{"bookshelf_items", (*models.BookshelfItem)(nil)},
		{"bookshelves", (*models.Bookshelf)(nil)},
		{"books", (*models.Book)(nil)},
		{"users", (*models.User)(nil)},
	}

	resp := resetResponse{Deleted: map[string]int{}}
	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range tables {
			result, err := tx.NewDelete().Model(table.model).Where("1=1").Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			deleted, err := result.RowsAffected()
			if err != nil {
				return errors.WithStack(err)
			}
			resp.Deleted[table.name] = int(deleted)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to reset data")
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
