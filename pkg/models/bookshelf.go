package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// BookshelfTag is the reading status a user gives a book on their shelf.
type BookshelfTag int

const (
	BookshelfTagWantToRead BookshelfTag = iota
	BookshelfTagReading
	BookshelfTagRead
	BookshelfTagOwned
)

// ErrInvalidBookshelfTag is returned when a tag is outside the known range.
var ErrInvalidBookshelfTag = errors.New("Tag must be a valid integer between 0 and 3")

// BookshelfTags lists every tag in display order.
var BookshelfTags = []BookshelfTag{
	BookshelfTagWantToRead,
	BookshelfTagReading,
	BookshelfTagRead,
	BookshelfTagOwned,
}

func (t BookshelfTag) Valid() bool {
	return t >= BookshelfTagWantToRead && t <= BookshelfTagOwned
}

func (t BookshelfTag) String() string {
	switch t {
	case BookshelfTagWantToRead:
		return "Want to Read"
	case BookshelfTagReading:
		return "Reading"
	case BookshelfTagRead:
		return "Read"
	case BookshelfTagOwned:
		return "Owned"
	default:
		return "Unknown"
	}
}

// ParseBookshelfTag converts form input like "2" into a tag.
func ParseBookshelfTag(value string) (BookshelfTag, error) {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, ErrInvalidBookshelfTag
	}
	tag := BookshelfTag(i)
	if !tag.Valid() {
		return 0, ErrInvalidBookshelfTag
	}
	return tag, nil
}

// Bookshelf is a user's personal collection. Every user has at most one.
type Bookshelf struct {
	bun.BaseModel `bun:"table:bookshelves,alias:bs"`

	ID        int              `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UserID    int              `bun:",nullzero" json:"user_id"`
	User      *User            `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Items     []*BookshelfItem `bun:"rel:has-many,join:id=bookshelf_id" json:"items,omitempty"`
}

type BookshelfItem struct {
	bun.BaseModel `bun:"table:bookshelf_items,alias:bsi"`

	ID          int          `bun:",pk,nullzero" json:"id"`
	BookshelfID int          `bun:",nullzero" json:"bookshelf_id"`
	Bookshelf   *Bookshelf   `bun:"rel:belongs-to,join:bookshelf_id=id" json:"-"`
	BookID      int          `bun:",nullzero" json:"book_id"`
	Book        *Book        `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Tag         BookshelfTag `json:"tag"`
	AddedAt     time.Time    `json:"added_at"`
}
