package books

import "github.com/campusshelf/campusshelf/pkg/models"

type ListBooksQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"100" validate:"min=1,max=500"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

// CreateBookPayload is shared by the JSON API and the register page. Presence
// of the required fields is checked by the service.
type CreateBookPayload struct {
	Title  string  `json:"title" form:"title" mod:"trim" validate:"max=200"`
	Author string  `json:"author" form:"author" mod:"trim" validate:"max=100"`
	Course string  `json:"course" form:"course" mod:"trim" validate:"max=100"`
	ISBN   *string `json:"isbn" form:"isbn" mod:"trim"`
}

type SearchBooksQuery struct {
	Mode   string `query:"mode" json:"mode,omitempty"`
	Query  string `query:"q" json:"q,omitempty" validate:"max=100"`
	Title  string `query:"title" json:"title,omitempty" validate:"max=100"`
	Author string `query:"author" json:"author,omitempty" validate:"max=100"`
	Course string `query:"course" json:"course,omitempty" validate:"max=100"`
}

type ListBooksResponse struct {
	Books []*models.Book `json:"books"`
}

type SearchBooksResponse struct {
	Books []*models.Book `json:"books"`
	Count int            `json:"count"`
	Mode  string         `json:"mode"`
}

type CreateBookResponse struct {
	Success bool         `json:"success"`
	Book    *models.Book `json:"book"`
}
