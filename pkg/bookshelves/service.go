package bookshelves

import (
	"context"
	"database/sql"
	"time"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type AddOrUpdateItemOptions struct {
	BookshelfID int
	BookID      int
	Tag         models.BookshelfTag
}

type UpdateTagOptions struct {
	ItemID int
	UserID int
	Tag    models.BookshelfTag
}

type ListItemsOptions struct {
	BookshelfID int
	Tag         *models.BookshelfTag
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func invalidTag() error {
	return errcodes.BadRequest(models.ErrInvalidBookshelfTag.Error())
}

// GetOrCreateForUser returns the user's shelf, creating it the first time.
func (svc *Service) GetOrCreateForUser(ctx context.Context, userID int) (*models.Bookshelf, error) {
	shelf := &models.Bookshelf{
		CreatedAt: time.Now(),
		UserID:    userID,
	}
	_, err := svc.db.NewInsert().
		Model(shelf).
		On("CONFLICT (user_id) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	shelf = &models.Bookshelf{}
	err = svc.db.NewSelect().
		Model(shelf).
		Where("bs.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return shelf, nil
}

// AddOrUpdateItem puts the book on the shelf with the given tag, or retags it
// if it's already there. created reports whether a new item was added.
func (svc *Service) AddOrUpdateItem(ctx context.Context, opts AddOrUpdateItemOptions) (item *models.BookshelfItem, created bool, err error) {
	if !opts.Tag.Valid() {
		return nil, false, invalidTag()
	}

	exists, err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("id = ?", opts.BookID).
		Exists(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	if !exists {
		return nil, false, errcodes.NotFound("Book")
	}

	item = &models.BookshelfItem{
		BookshelfID: opts.BookshelfID,
		BookID:      opts.BookID,
		Tag:         opts.Tag,
		AddedAt:     time.Now(),
	}
	res, err := svc.db.NewInsert().
		Model(item).
		On("CONFLICT (bookshelf_id, book_id) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	if n > 0 {
		created = true
	} else {
		_, err = svc.db.NewUpdate().
			Model((*models.BookshelfItem)(nil)).
			Set("tag = ?", opts.Tag).
			Where("bookshelf_id = ?", opts.BookshelfID).
			Where("book_id = ?", opts.BookID).
			Exec(ctx)
		if err != nil {
			return nil, false, errors.WithStack(err)
		}
	}

	item = &models.BookshelfItem{}
	err = svc.db.NewSelect().
		Model(item).
		Relation("Book").
		Where("bsi.bookshelf_id = ?", opts.BookshelfID).
		Where("bsi.book_id = ?", opts.BookID).
		Scan(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	return item, created, nil
}

// UpdateTag retags an item on the user's own shelf. Items on other shelves
// are reported as not found.
func (svc *Service) UpdateTag(ctx context.Context, opts UpdateTagOptions) (*models.BookshelfItem, error) {
	if !opts.Tag.Valid() {
		return nil, invalidTag()
	}

	ownShelf := svc.db.NewSelect().
		Model((*models.Bookshelf)(nil)).
		Column("id").
		Where("user_id = ?", opts.UserID)

	res, err := svc.db.NewUpdate().
		Model((*models.BookshelfItem)(nil)).
		Set("tag = ?", opts.Tag).
		Where("id = ?", opts.ItemID).
		Where("bookshelf_id IN (?)", ownShelf).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n == 0 {
		return nil, errcodes.NotFound("Item")
	}

	item := &models.BookshelfItem{}
	err = svc.db.NewSelect().
		Model(item).
		Relation("Book").
		Where("bsi.id = ?", opts.ItemID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Item")
		}
		return nil, errors.WithStack(err)
	}
	return item, nil
}

// RemoveBook takes the book off the user's shelf. Removing a book that isn't
// on the shelf succeeds.
func (svc *Service) RemoveBook(ctx context.Context, userID, bookID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Book")
	}

	ownShelf := svc.db.NewSelect().
		Model((*models.Bookshelf)(nil)).
		Column("id").
		Where("user_id = ?", userID)

	_, err = svc.db.NewDelete().
		Model((*models.BookshelfItem)(nil)).
		Where("book_id = ?", bookID).
		Where("bookshelf_id IN (?)", ownShelf).
		Exec(ctx)
	return errors.WithStack(err)
}

// ListItems returns the shelf's items with their books, most recently added
// first.
func (svc *Service) ListItems(ctx context.Context, opts ListItemsOptions) ([]*models.BookshelfItem, error) {
	items := []*models.BookshelfItem{}
	q := svc.db.NewSelect().
		Model(&items).
		Relation("Book").
		Where("bsi.bookshelf_id = ?", opts.BookshelfID).
		Order("bsi.added_at DESC", "bsi.id DESC")
	if opts.Tag != nil {
		q = q.Where("bsi.tag = ?", *opts.Tag)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return items, nil
}
