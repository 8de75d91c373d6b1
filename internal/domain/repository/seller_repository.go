package repository

import (
	"context"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

// SellerRepository define el puerto de persistencia para Seller.
type SellerRepository interface {
	Create(ctx context.Context, seller *entity.Seller) error
	GetByID(ctx context.Context, id string) (*entity.Seller, error)
	Update(ctx context.Context, seller *entity.Seller) error
	List(ctx context.Context) ([]*entity.Seller, error)
}
