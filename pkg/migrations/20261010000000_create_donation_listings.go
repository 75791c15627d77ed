package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE donation_listings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				donor_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				requester_id INTEGER REFERENCES users (id) ON DELETE SET NULL,
				recipient_id INTEGER REFERENCES users (id) ON DELETE SET NULL,
				status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'pending', 'completed')),
				added_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				CHECK ((status = 'pending') = (requester_id IS NOT NULL)),
				CHECK (requester_id IS NULL OR requester_id <> donor_id)
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_donation_listings_book_donor ON donation_listings (book_id, donor_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_donation_listings_donor_status ON donation_listings (donor_id, status)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_donation_listings_requester_status ON donation_listings (requester_id, status)`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP TABLE IF EXISTS donation_listings`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
