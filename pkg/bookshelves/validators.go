package bookshelves

import "github.com/campusshelf/campusshelf/pkg/models"

type ListItemsQuery struct {
	Tag *int `query:"tag" json:"tag,omitempty"`
}

// AddItemPayload is shared by the JSON API and the add-to-shelf form.
type AddItemPayload struct {
	BookID int  `json:"book_id" form:"book_id" validate:"required,min=1"`
	Tag    *int `json:"tag" form:"tag"`
}

type UpdateTagPayload struct {
	Tag *int `json:"tag" form:"tag"`
}

type BookshelfResponse struct {
	Bookshelf *models.Bookshelf       `json:"bookshelf"`
	Items     []*models.BookshelfItem `json:"items"`
}

type AddItemResponse struct {
	Created bool                  `json:"created"`
	Item    *models.BookshelfItem `json:"item"`
}

type UpdateTagResponse struct {
	Success bool                  `json:"success"`
	Item    *models.BookshelfItem `json:"item"`
}

// ParseTag converts an optional bound tag into a BookshelfTag. A missing tag
// is invalid.
func ParseTag(tag *int) (models.BookshelfTag, error) {
	if tag == nil {
		return 0, invalidTag()
	}
	t := models.BookshelfTag(*tag)
	if !t.Valid() {
		return 0, invalidTag()
	}
	return t, nil
}
