package search

import (
	"github.com/campusshelf/campusshelf/pkg/isbn"
	"github.com/uptrace/bun"
)

type Mode string

const (
	ModeTitle    Mode = "title"
	ModeAuthor   Mode = "author"
	ModeCourse   Mode = "course"
	ModeCombined Mode = "combined"
	ModeAdvanced Mode = "advanced"
	ModeISBN     Mode = "isbn"
)

// Modes lists every search mode in display order.
var Modes = []Mode{ModeCombined, ModeTitle, ModeAuthor, ModeCourse, ModeISBN, ModeAdvanced}

func (m Mode) Label() string {
	switch m {
	case ModeTitle:
		return "Title"
	case ModeAuthor:
		return "Author"
	case ModeCourse:
		return "Course"
	case ModeAdvanced:
		return "Advanced"
	case ModeISBN:
		return "ISBN"
	default:
		return "All fields"
	}
}

// Criteria is the user input a strategy filters on. Query feeds the single
// field modes, and the per-field values feed advanced search.
type Criteria struct {
	Query  string
	Title  string
	Author string
	Course string
}

// Strategy narrows a select over the books table (alias b).
type Strategy interface {
	Apply(q *bun.SelectQuery, c Criteria) *bun.SelectQuery
}

var strategies = map[Mode]Strategy{
	ModeTitle:    fieldStrategy{column: "b.title"},
	ModeAuthor:   fieldStrategy{column: "b.author"},
	ModeCourse:   fieldStrategy{column: "b.course"},
	ModeCombined: combinedStrategy{columns: []string{"b.title", "b.author", "b.course"}},
	ModeAdvanced: advancedStrategy{},
	ModeISBN:     isbnStrategy{},
}

// ForMode resolves a mode name to its strategy. Unknown or empty names fall
// back to combined search.
func ForMode(name string) (Mode, Strategy) {
	mode := Mode(name)
	if s, ok := strategies[mode]; ok {
		return mode, s
	}
	return ModeCombined, strategies[ModeCombined]
}

const likeClause = "? LIKE ? ESCAPE '" + LikeEscape + "'"

type fieldStrategy struct {
	column string
}

func (s fieldStrategy) Apply(q *bun.SelectQuery, c Criteria) *bun.SelectQuery {
	pattern := BuildContainsPattern(c.Query)
	if pattern == "" {
		return q
	}
	return q.Where(likeClause, bun.Ident(s.column), pattern)
}

type combinedStrategy struct {
	columns []string
}

func (s combinedStrategy) Apply(q *bun.SelectQuery, c Criteria) *bun.SelectQuery {
	pattern := BuildContainsPattern(c.Query)
	if pattern == "" {
		return q
	}
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, column := range s.columns {
			q = q.WhereOr(likeClause, bun.Ident(column), pattern)
		}
		return q
	})
}

// Every non-empty field must match.
type advancedStrategy struct{}

func (advancedStrategy) Apply(q *bun.SelectQuery, c Criteria) *bun.SelectQuery {
	fields := []struct {
		column string
		value  string
	}{
		{"b.title", c.Title},
		{"b.author", c.Author},
		{"b.course", c.Course},
	}
	for _, f := range fields {
		if pattern := BuildContainsPattern(f.value); pattern != "" {
			q = q.Where(likeClause, bun.Ident(f.column), pattern)
		}
	}
	return q
}

type isbnStrategy struct{}

func (isbnStrategy) Apply(q *bun.SelectQuery, c Criteria) *bun.SelectQuery {
	normalized := isbn.Normalize(SanitizeQuery(c.Query))
	if normalized == "" {
		return q
	}
	return q.Where("b.isbn = ?", normalized)
}
