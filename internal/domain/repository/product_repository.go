package repository

import (
	"context"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto y bloquea su fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update actualiza datos de catálogo; no toca Stock ni StockByBranch.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock persiste sólo los saldos materializados (uso exclusivo del proyector).
	UpdateStock(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, categoryID string, limit, offset int) ([]*entity.Product, error)
	ListAll(ctx context.Context) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
