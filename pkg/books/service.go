package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/campusshelf/campusshelf/pkg/database"
	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/isbn"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/campusshelf/campusshelf/pkg/search"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

const MsgFieldsRequired = "All fields are required."

// duplicateISBNResource names the resource in the duplicate ISBN error.
const duplicateISBNResource = "Book with this ISBN"

type CreateBookOptions struct {
	Title  string
	Author string
	Course string
	ISBN   *string
}

type RetrieveBookOptions struct {
	ID   *int
	ISBN *string
}

type ListBooksOptions struct {
	Limit  *int
	Offset *int
}

type SearchBooksOptions struct {
	Mode string
	search.Criteria
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Create registers a book. The ISBN is normalized before it's validated and
// stored, and an empty ISBN is stored as NULL.
func (svc *Service) Create(ctx context.Context, opts CreateBookOptions) (*models.Book, error) {
	if opts.Title == "" || opts.Author == "" || opts.Course == "" {
		return nil, errcodes.BadRequest(MsgFieldsRequired)
	}

	normalized := isbn.NormalizePtr(opts.ISBN)
	if normalized != nil {
		if !isbn.Validate(*normalized) {
			return nil, errcodes.InvalidISBN()
		}

		exists, err := svc.db.NewSelect().
			Model((*models.Book)(nil)).
			Where("isbn = ?", *normalized).
			Exists(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if exists {
			return nil, errcodes.AlreadyExists(duplicateISBNResource)
		}
	}

	now := time.Now()
	book := &models.Book{
		CreatedAt: now,
		UpdatedAt: now,
		Title:     opts.Title,
		Author:    opts.Author,
		Course:    opts.Course,
		ISBN:      normalized,
	}

	_, err := svc.db.NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		// The unique index settles races the existence check can't see.
		if database.IsUniqueViolation(err) {
			return nil, errcodes.AlreadyExists(duplicateISBNResource)
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) Retrieve(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.ISBN != nil {
		q = q.Where("b.isbn = ?", isbn.Normalize(*opts.ISBN))
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// List returns books newest first.
func (svc *Service) List(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.NewSelect().
		Model(&books).
		Order("b.created_at DESC", "b.id DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// Search filters books with the strategy for opts.Mode and reports the mode
// that was actually used.
func (svc *Service) Search(ctx context.Context, opts SearchBooksOptions) ([]*models.Book, search.Mode, error) {
	mode, strategy := search.ForMode(opts.Mode)
	books := []*models.Book{}

	q := svc.db.NewSelect().
		Model(&books).
		Order("b.created_at DESC", "b.id DESC")
	q = strategy.Apply(q, opts.Criteria)

	err := q.Scan(ctx)
	if err != nil {
		return nil, mode, errors.WithStack(err)
	}

	return books, mode, nil
}
