package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListing(donor *User) *DonationListing {
	return &DonationListing{
		ID:      1,
		BookID:  1,
		DonorID: donor.ID,
		Donor:   donor,
		Status:  DonationStatusAvailable,
	}
}

func TestDonationListing_Request(t *testing.T) {
	donor := &User{ID: 1, Username: "donor"}
	alice := &User{ID: 2, Username: "alice"}
	bob := &User{ID: 3, Username: "bob"}

	t.Run("moves available to pending", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))
		assert.Equal(t, DonationStatusPending, l.Status)
		require.NotNil(t, l.RequesterID)
		assert.Equal(t, alice.ID, *l.RequesterID)
		assert.Same(t, alice, l.Requester)
	})

	t.Run("requires an actor", func(t *testing.T) {
		l := newListing(donor)
		assert.ErrorIs(t, l.Request(nil), ErrActorRequired)
		assert.Equal(t, DonationStatusAvailable, l.Status)
	})

	t.Run("donor can't request their own book", func(t *testing.T) {
		l := newListing(donor)
		err := l.Request(donor)
		assert.ErrorIs(t, err, ErrOwnListing)
		assert.Equal(t, "Cannot request your own book", err.Error())
		assert.Nil(t, l.RequesterID)
	})

	t.Run("pending listings can't be requested again", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))
		err := l.Request(bob)
		assert.ErrorIs(t, err, ErrNotAvailable)
		assert.Equal(t, alice.ID, *l.RequesterID)
	})

	t.Run("completed listings can't be requested", func(t *testing.T) {
		l := newListing(donor)
		l.Status = DonationStatusCompleted
		assert.ErrorIs(t, l.Request(bob), ErrNotAvailable)
	})
}

func TestDonationListing_Cancel(t *testing.T) {
	donor := &User{ID: 1}
	alice := &User{ID: 2}
	bob := &User{ID: 3}

	t.Run("requester cancels back to available", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))
		require.NoError(t, l.Cancel(alice))
		assert.Equal(t, DonationStatusAvailable, l.Status)
		assert.Nil(t, l.RequesterID)
		assert.Nil(t, l.Requester)
	})

	t.Run("available listings weren't requested", func(t *testing.T) {
		l := newListing(donor)
		err := l.Cancel(alice)
		assert.ErrorIs(t, err, ErrNotRequested)
		assert.Equal(t, "Book wasn't requested", err.Error())
	})

	t.Run("only the requester can cancel", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))

		err := l.Cancel(bob)
		assert.ErrorIs(t, err, ErrRequestedByOther)

		var terr *TransitionError
		require.ErrorAs(t, err, &terr)
		assert.True(t, terr.ActorMismatch)

		assert.ErrorIs(t, l.Cancel(donor), ErrRequestedByOther)
		assert.Equal(t, DonationStatusPending, l.Status)
	})

	t.Run("requires an actor", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))
		assert.ErrorIs(t, l.Cancel(nil), ErrActorRequired)
	})
}

func TestDonationListing_Approve(t *testing.T) {
	donor := &User{ID: 1}
	alice := &User{ID: 2}

	t.Run("donor approves a pending request", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))
		require.NoError(t, l.Approve(donor))
		assert.Equal(t, DonationStatusCompleted, l.Status)
		assert.Nil(t, l.RequesterID)
		require.NotNil(t, l.RecipientID)
		assert.Equal(t, alice.ID, *l.RecipientID)
		assert.Same(t, alice, l.Recipient)
	})

	t.Run("available listings can't be approved", func(t *testing.T) {
		l := newListing(donor)
		err := l.Approve(donor)
		assert.ErrorIs(t, err, ErrApproveNotPending)
		assert.Equal(t, "Only pending donations can be approved", err.Error())
	})

	t.Run("completed listings are terminal", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))
		require.NoError(t, l.Approve(donor))

		assert.ErrorIs(t, l.Approve(donor), ErrApproveNotPending)
		assert.ErrorIs(t, l.Reject(donor), ErrRejectNotPending)
		assert.ErrorIs(t, l.Cancel(alice), ErrNotRequested)
		assert.ErrorIs(t, l.Request(&User{ID: 9}), ErrNotAvailable)
		assert.Equal(t, DonationStatusCompleted, l.Status)
	})

	t.Run("only the donor can approve", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))
		assert.ErrorIs(t, l.Approve(alice), ErrNotDonor)
		assert.Equal(t, DonationStatusPending, l.Status)
	})

	t.Run("requires an actor", func(t *testing.T) {
		l := newListing(donor)
		assert.ErrorIs(t, l.Approve(nil), ErrActorRequired)
	})
}

func TestDonationListing_Reject(t *testing.T) {
	donor := &User{ID: 1}
	alice := &User{ID: 2}
	bob := &User{ID: 3}

	t.Run("donor rejects back to available", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))
		require.NoError(t, l.Reject(donor))
		assert.Equal(t, DonationStatusAvailable, l.Status)
		assert.Nil(t, l.RequesterID)

		// a rejected listing can be requested by someone else
		require.NoError(t, l.Request(bob))
		assert.Equal(t, bob.ID, *l.RequesterID)
	})

	t.Run("available listings can't be rejected", func(t *testing.T) {
		l := newListing(donor)
		err := l.Reject(donor)
		assert.ErrorIs(t, err, ErrRejectNotPending)
		assert.Equal(t, "Only pending donations can be rejected", err.Error())
	})

	t.Run("only the donor can reject", func(t *testing.T) {
		l := newListing(donor)
		require.NoError(t, l.Request(alice))
		assert.ErrorIs(t, l.Reject(bob), ErrNotDonor)
		assert.ErrorIs(t, l.Reject(alice), ErrNotDonor)
	})
}

func TestDonationListing_Can(t *testing.T) {
	donor := &User{ID: 1}
	alice := &User{ID: 2}

	l := newListing(donor)
	assert.True(t, l.CanRequest(alice))
	assert.False(t, l.CanRequest(donor))
	assert.False(t, l.CanCancel(alice))
	assert.False(t, l.CanApprove(donor))

	require.NoError(t, l.Request(alice))
	assert.False(t, l.CanRequest(alice))
	assert.True(t, l.CanCancel(alice))
	assert.True(t, l.CanApprove(donor))
	assert.True(t, l.CanReject(donor))
	assert.False(t, l.CanApprove(alice))
}

func TestDonationStatus(t *testing.T) {
	assert.True(t, DonationStatusAvailable.Valid())
	assert.True(t, DonationStatusPending.Valid())
	assert.True(t, DonationStatusCompleted.Valid())
	assert.False(t, DonationStatus("archived").Valid())
	assert.Equal(t, "Pending", DonationStatusPending.Label())
}

func TestParseBookshelfTag(t *testing.T) {
	tests := []struct {
		value    string
		expected BookshelfTag
		valid    bool
	}{
		{"0", BookshelfTagWantToRead, true},
		{"1", BookshelfTagReading, true},
		{" 2 ", BookshelfTagRead, true},
		{"3", BookshelfTagOwned, true},
		{"4", 0, false},
		{"-1", 0, false},
		{"read", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			tag, err := ParseBookshelfTag(tt.value)
			if !tt.valid {
				assert.ErrorIs(t, err, ErrInvalidBookshelfTag)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tag)
		})
	}
}
