package models

import (
	"time"

	"github.com/uptrace/bun"
)

type DonationStatus string

const (
	DonationStatusAvailable DonationStatus = "available"
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
)

func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusAvailable, DonationStatusPending, DonationStatusCompleted:
		return true
	default:
		return false
	}
}

func (s DonationStatus) Label() string {
	switch s {
	case DonationStatusAvailable:
		return "Available"
	case DonationStatusPending:
		return "Pending"
	case DonationStatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// TransitionError is returned when a donation listing can't move to the
// requested status. ActorMismatch is set when the failure is about who is
// acting rather than what state the listing is in.
type TransitionError struct {
	Reason        string
	ActorMismatch bool
}

func (e *TransitionError) Error() string {
	return e.Reason
}

var (
	ErrActorRequired     = &TransitionError{Reason: "An acting user is required"}
	ErrOwnListing        = &TransitionError{Reason: "Cannot request your own book", ActorMismatch: true}
	ErrNotAvailable      = &TransitionError{Reason: "Requested book is not available"}
	ErrNotRequested      = &TransitionError{Reason: "Book wasn't requested"}
	ErrRequestedByOther  = &TransitionError{Reason: "Request was made by another user", ActorMismatch: true}
	ErrNotDonor          = &TransitionError{Reason: "Only the donor can respond to this request", ActorMismatch: true}
	ErrApproveNotPending = &TransitionError{Reason: "Only pending donations can be approved"}
	ErrRejectNotPending  = &TransitionError{Reason: "Only pending donations can be rejected"}
)

// DonationListing offers one donor's copy of a book to other users. A
// requester is set exactly when the listing is pending. Once approved, the
// requester becomes the recipient.
type DonationListing struct {
	bun.BaseModel `bun:"table:donation_listings,alias:dl"`

	ID          int            `bun:",pk,nullzero" json:"id"`
	BookID      int            `bun:",nullzero" json:"book_id"`
	Book        *Book          `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	DonorID     int            `bun:",nullzero" json:"donor_id"`
	Donor       *User          `bun:"rel:belongs-to,join:donor_id=id" json:"donor,omitempty"`
	RequesterID *int           `json:"requester_id"`
	Requester   *User          `bun:"rel:belongs-to,join:requester_id=id" json:"requester"`
	RecipientID *int           `json:"recipient_id,omitempty"`
	Recipient   *User          `bun:"rel:belongs-to,join:recipient_id=id" json:"recipient,omitempty"`
	Status      DonationStatus `bun:",nullzero" json:"status"`
	AddedAt     time.Time      `json:"added_at"`
}

func (l *DonationListing) IsDonor(u *User) bool {
	return u != nil && u.ID == l.DonorID
}

func (l *DonationListing) IsRequester(u *User) bool {
	return u != nil && l.RequesterID != nil && *l.RequesterID == u.ID
}

func (l *DonationListing) CanRequest(actor *User) bool { return l.guardRequest(actor) == nil }
func (l *DonationListing) CanCancel(actor *User) bool  { return l.guardCancel(actor) == nil }
func (l *DonationListing) CanApprove(actor *User) bool { return l.guardApprove(actor) == nil }
func (l *DonationListing) CanReject(actor *User) bool  { return l.guardReject(actor) == nil }

// Request marks an available listing as pending for the actor.
func (l *DonationListing) Request(actor *User) error {
	if err := l.guardRequest(actor); err != nil {
		return err
	}
	l.Status = DonationStatusPending
	requesterID := actor.ID
	l.RequesterID = &requesterID
	l.Requester = actor
	return nil
}

// Cancel withdraws the actor's pending request.
func (l *DonationListing) Cancel(actor *User) error {
	if err := l.guardCancel(actor); err != nil {
		return err
	}
	l.clearRequest()
	return nil
}

// Approve completes a pending listing and hands it to the requester. Only the
// donor can approve.
func (l *DonationListing) Approve(actor *User) error {
	if err := l.guardApprove(actor); err != nil {
		return err
	}
	l.Status = DonationStatusCompleted
	l.RecipientID = l.RequesterID
	l.Recipient = l.Requester
	l.RequesterID = nil
	l.Requester = nil
	return nil
}

// Reject turns down the pending request and makes the listing available
// again. Only the donor can reject.
func (l *DonationListing) Reject(actor *User) error {
	if err := l.guardReject(actor); err != nil {
		return err
	}
	l.clearRequest()
	return nil
}

func (l *DonationListing) clearRequest() {
	l.Status = DonationStatusAvailable
	l.RequesterID = nil
	l.Requester = nil
}

func (l *DonationListing) guardRequest(actor *User) error {
	if actor == nil {
		return ErrActorRequired
	}
	if l.IsDonor(actor) {
		return ErrOwnListing
	}
	if l.Status != DonationStatusAvailable {
		return ErrNotAvailable
	}
	return nil
}

func (l *DonationListing) guardCancel(actor *User) error {
	if actor == nil {
		return ErrActorRequired
	}
	if l.Status != DonationStatusPending {
		return ErrNotRequested
	}
	if !l.IsRequester(actor) {
		return ErrRequestedByOther
	}
	return nil
}

// Donor identity is checked before status for approve and reject.
func (l *DonationListing) guardApprove(actor *User) error {
	if actor == nil {
		return ErrActorRequired
	}
	if !l.IsDonor(actor) {
		return ErrNotDonor
	}
	if l.Status != DonationStatusPending {
		return ErrApproveNotPending
	}
	return nil
}

func (l *DonationListing) guardReject(actor *User) error {
	if actor == nil {
		return ErrActorRequired
	}
	if !l.IsDonor(actor) {
		return ErrNotDonor
	}
	if l.Status != DonationStatusPending {
		return ErrRejectNotPending
	}
	return nil
}
