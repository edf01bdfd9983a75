package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStorage reports a store failure that persisted after a clean retry.
var ErrStorage = errors.New("storage failure")

// withTx runs fn inside a transaction. A transient Postgres failure
// (serialization conflict, deadlock, lost connection) is retried once;
// the units passed here are clean retry-safe read-modify-write sequences
// bounded by the transaction itself. A second transient failure surfaces
// as ErrStorage.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	err := runTx(ctx, db, fn)
	if err == nil || !isTransient(err) {
		return err
	}

	if err = runTx(ctx, db, fn); err != nil {
		if isTransient(err) {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		return err
	}

	return nil
}

func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// isTransient reports whether err is a retryable store failure: a
// serialization conflict (40001), a deadlock (40P01), or a connection
// error (class 08).
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return true
		}
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return true
		}
	}
	return errors.Is(err, sql.ErrConnDone)
}
