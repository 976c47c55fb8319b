package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jhoicas/inventario-patrimonio/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción SQLite.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner construye el runner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run ejecuta fn con repositorios atados a la tx; Commit si fn devuelve nil.
func (r *TxRunner) Run(ctx context.Context, fn func(
	users repository.UserRepository,
	staff repository.StaffRepository,
	assets repository.AssetRepository,
) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewUserRepository(tx), NewStaffRepository(tx), NewAssetRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
