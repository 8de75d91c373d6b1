package repository

import (
	"context"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

// MovementRepository libro de movimientos de stock (append-only).
// No valida: el validador de operaciones es quien decide qué se registra.
type MovementRepository interface {
	// Append registra el movimiento de forma atómica (cabecera y líneas). Asigna ID si está vacío.
	Append(ctx context.Context, movement *entity.Movement) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// ListByProductAndBranch movimientos que referencian el producto con branch o destination igual a branch.
	ListByProductAndBranch(ctx context.Context, productID, branch string) ([]*entity.Movement, error)
	// List historial filtrado, más reciente primero.
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
	// ListAll todo el libro (reconstrucción de saldos); el orden no está garantizado.
	ListAll(ctx context.Context) ([]*entity.Movement, error)
	// CountByProduct cantidad de movimientos que referencian el producto.
	CountByProduct(ctx context.Context, productID string) (int, error)
	// UpdateNotes única edición permitida: observaciones.
	UpdateNotes(ctx context.Context, id, observations string) error
}
