package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryRequest alta o modificación de una categoría.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateSellerRequest alta de un vendedor. bonus_percent: 10 = 10%.
type CreateSellerRequest struct {
	Name         string          `json:"name"`
	BonusPercent decimal.Decimal `json:"bonus_percent"`
}

// UpdateSellerRequest modificación parcial de un vendedor.
type UpdateSellerRequest struct {
	Name         *string          `json:"name"`
	BonusPercent *decimal.Decimal `json:"bonus_percent"`
	Active       *bool            `json:"active"`
}

// SellerResponse salida de un vendedor.
type SellerResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	BonusPercent decimal.Decimal `json:"bonus_percent"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BranchResponse sucursal con sus totales de stock.
type BranchResponse struct {
	Name              string `json:"name"`
	TotalUnits        int    `json:"total_units"`
	ProductsWithStock int    `json:"products_with_stock"`
}
