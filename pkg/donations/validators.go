package donations

import "github.com/campusshelf/campusshelf/pkg/models"

// BookPayload names the book for add and delete. The listing forms post the
// same field.
type BookPayload struct {
	BookID int `json:"book_id" form:"book_id" validate:"required,min=1"`
}

// ListingPayload names the listing a page form acts on.
type ListingPayload struct {
	ListingID int `form:"listing_id" validate:"required,min=1"`
}

type ListListingsResponse struct {
	Listings []*models.DonationListing `json:"listings"`
}
