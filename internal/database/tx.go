package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// withinTx runs fn inside a transaction, committing only when fn succeeds.
func withinTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// dbTime normalizes a timestamp before it is written. Everything is stored
// in UTC so that text-backed sqlite timestamps sort correctly.
func dbTime(t time.Time) time.Time {
	return t.UTC()
}

func dbTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := dbTime(*t)
	return &u
}
