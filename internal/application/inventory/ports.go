package inventory

import (
	"context"

	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}

// Tx repositorios de una transacción en curso.
type Tx interface {
	Movements() repository.MovementRepository
	Products() repository.ProductRepository
	// Savepoint ejecuta fn en una subtransacción: si fn falla sólo se deshace lo escrito dentro de ella
	// y la transacción externa sigue viva.
	Savepoint(ctx context.Context, fn func(products repository.ProductRepository) error) error
}
