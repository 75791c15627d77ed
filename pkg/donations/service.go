package donations

import (
	"context"
	"database/sql"
	"time"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// maxTransitionAttempts bounds how often a transition is retried after losing
// a race on the listing's row.
const maxTransitionAttempts = 3

var ErrConcurrentUpdate = errors.New("donation listing changed concurrently")

type ListingOptions struct {
	BookID  int
	DonorID int
}

type TransitionOptions struct {
	ListingID int
	Actor     *models.User
}

// Transition is one of the state machine operations, in method expression
// form, such as (*Service).Request.
type Transition func(svc *Service, ctx context.Context, opts TransitionOptions) (*models.DonationListing, error)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) withRelations(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Book").
		Relation("Donor").
		Relation("Requester").
		Relation("Recipient")
}

// dropEmptyUsers nils out the requester and recipient relations when their
// foreign keys are NULL, so they serialize as null.
func dropEmptyUsers(listings ...*models.DonationListing) {
	for _, l := range listings {
		if l.RequesterID == nil {
			l.Requester = nil
		}
		if l.RecipientID == nil {
			l.Recipient = nil
		}
	}
}

func (svc *Service) ensureBook(ctx context.Context, bookID int) error {
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
	return nil
}

// AddListing offers the donor's copy of a book. Listing the same book twice
// returns the existing listing, whatever its status.
func (svc *Service) AddListing(ctx context.Context, opts ListingOptions) (*models.DonationListing, error) {
	if err := svc.ensureBook(ctx, opts.BookID); err != nil {
		return nil, err
	}

	listing := &models.DonationListing{
		BookID:  opts.BookID,
		DonorID: opts.DonorID,
		Status:  models.DonationStatusAvailable,
		AddedAt: time.Now(),
	}
	_, err := svc.db.NewInsert().
		Model(listing).
		On("CONFLICT (book_id, donor_id) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	listing = &models.DonationListing{}
	err = svc.withRelations(svc.db.NewSelect().Model(listing)).
		Where("dl.book_id = ?", opts.BookID).
		Where("dl.donor_id = ?", opts.DonorID).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	dropEmptyUsers(listing)
	return listing, nil
}

// DeleteListing withdraws the donor's listing for a book in any status. A
// missing listing is not an error.
func (svc *Service) DeleteListing(ctx context.Context, opts ListingOptions) error {
	if err := svc.ensureBook(ctx, opts.BookID); err != nil {
		return err
	}

	_, err := svc.db.NewDelete().
		Model((*models.DonationListing)(nil)).
		Where("book_id = ?", opts.BookID).
		Where("donor_id = ?", opts.DonorID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) Retrieve(ctx context.Context, id int) (*models.DonationListing, error) {
	listing := &models.DonationListing{}
	err := svc.withRelations(svc.db.NewSelect().Model(listing)).
		Where("dl.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Listing")
		}
		return nil, errors.WithStack(err)
	}
	dropEmptyUsers(listing)
	return listing, nil
}

func (svc *Service) Request(ctx context.Context, opts TransitionOptions) (*models.DonationListing, error) {
	return svc.transition(ctx, opts, (*models.DonationListing).Request)
}

func (svc *Service) Cancel(ctx context.Context, opts TransitionOptions) (*models.DonationListing, error) {
	return svc.transition(ctx, opts, (*models.DonationListing).Cancel)
}

func (svc *Service) Approve(ctx context.Context, opts TransitionOptions) (*models.DonationListing, error) {
	return svc.transition(ctx, opts, (*models.DonationListing).Approve)
}

func (svc *Service) Reject(ctx context.Context, opts TransitionOptions) (*models.DonationListing, error) {
	return svc.transition(ctx, opts, (*models.DonationListing).Reject)
}

// transition loads the listing, applies the state change in memory and writes
// it back only if the row still has the status and requester that were
// observed. When another writer got there first the row is reloaded and the
// guard runs again.
func (svc *Service) transition(ctx context.Context, opts TransitionOptions, apply func(*models.DonationListing, *models.User) error) (*models.DonationListing, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		listing, err := svc.Retrieve(ctx, opts.ListingID)
		if err != nil {
			return nil, err
		}

		observedStatus := listing.Status
		observedRequester := listing.RequesterID

		if err := apply(listing, opts.Actor); err != nil {
			return nil, TransitionErrorToHTTP(err)
		}

		q := svc.db.NewUpdate().
			Model(listing).
			Column("status", "requester_id", "recipient_id").
			WherePK().
			Where("status = ?", observedStatus)
		if observedRequester == nil {
			q = q.Where("requester_id IS NULL")
		} else {
			q = q.Where("requester_id = ?", *observedRequester)
		}

		res, err := q.Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		ok, err := wonRace(res)
		if err != nil {
			return nil, err
		}
		if ok {
			return listing, nil
		}
	}
	return nil, errors.WithStack(ErrConcurrentUpdate)
}

// wonRace reports whether the conditional update changed the listing row.
func wonRace(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithStack(err)
	}
	return n == 1, nil
}

// TransitionErrorToHTTP maps state machine failures to HTTP errors. Other
// errors are returned unchanged.
func TransitionErrorToHTTP(err error) error {
	var te *models.TransitionError
	if !errors.As(err, &te) {
		return err
	}
	switch {
	case te == models.ErrActorRequired:
		return errcodes.Unauthorized(te.Reason)
	case te.ActorMismatch:
		return errcodes.NotPermitted(te.Reason)
	default:
		return errcodes.InvalidOperation(te.Reason)
	}
}

// MyListings returns the donor's open listings, pending ones first and then
// newest first.
func (svc *Service) MyListings(ctx context.Context, donorID int) ([]*models.DonationListing, error) {
	listings := []*models.DonationListing{}
	err := svc.withRelations(svc.db.NewSelect().Model(&listings)).
		Where("dl.donor_id = ?", donorID).
		Where("dl.status IN (?)", bun.In([]models.DonationStatus{models.DonationStatusAvailable, models.DonationStatusPending})).
		OrderExpr("CASE dl.status WHEN ? THEN 0 ELSE 1 END", models.DonationStatusPending).
		Order("dl.added_at DESC", "dl.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	dropEmptyUsers(listings...)
	return listings, nil
}

// PendingRequests returns the listings the user has requested and that are
// still waiting on the donor.
func (svc *Service) PendingRequests(ctx context.Context, requesterID int) ([]*models.DonationListing, error) {
	listings := []*models.DonationListing{}
	err := svc.withRelations(svc.db.NewSelect().Model(&listings)).
		Where("dl.requester_id = ?", requesterID).
		Where("dl.status = ?", models.DonationStatusPending).
		Order("dl.added_at DESC", "dl.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	dropEmptyUsers(listings...)
	return listings, nil
}

// Browse returns every available listing that the user didn't post.
func (svc *Service) Browse(ctx context.Context, userID int) ([]*models.DonationListing, error) {
	listings := []*models.DonationListing{}
	err := svc.withRelations(svc.db.NewSelect().Model(&listings)).
		Where("dl.status = ?", models.DonationStatusAvailable).
		Where("dl.donor_id != ?", userID).
		Order("dl.added_at DESC", "dl.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	dropEmptyUsers(listings...)
	return listings, nil
}
