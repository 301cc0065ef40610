package postgres

import (
	"context"

	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
)

// WithTx runs fn in a transaction. Returning an error, or panicking, from fn
// rolls back every write made through tx.
func (db *DB) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		// Path uniqueness is checked at commit.
		if isUniqueViolation(err) {
			return apperrors.Conflict(errPathConflict)
		}
		return errFailedCommitTransaction(err)
	}

	return nil
}
