// Package mysqlstore implements the Ledger Store on MySQL. Every unit of
// work is one REPEATABLE READ transaction; guarded reads take row locks with
// SELECT ... FOR UPDATE so concurrent transitions on the same record
// serialize at the database.
package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"barista/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Rollback is a no-op after a successful commit.
	defer sqlTx.Rollback()

	if err := fn(ctx, &mysqlTx{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type mysqlTx struct {
	tx *sql.Tx
}
