package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/aromas-stock/internal/application/inventory"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx inventory.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Persistence("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Persistence("commit transaction", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Movements() repository.MovementRepository { return NewMovementRepository(t.tx) }
func (t *pgTx) Products() repository.ProductRepository   { return NewProductRepository(t.tx) }

// Savepoint Begin sobre una tx abierta crea un SAVEPOINT; Rollback vuelve a él sin abortar la externa.
func (t *pgTx) Savepoint(ctx context.Context, fn func(products repository.ProductRepository) error) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return domain.Persistence("savepoint", err)
	}
	if err := fn(NewProductRepository(sp)); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return domain.Persistence("release savepoint", err)
	}
	return nil
}
