package service

import (
	"context"
	"fmt"
)

// WithTx runs fn inside a single store transaction. The transaction commits
// only if fn returns nil; otherwise every write made by fn is rolled back.
func WithTx(ctx context.Context, store Storage, fn func(tx Transaction) error) error {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
