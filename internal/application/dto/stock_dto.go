package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementRequest body para POST /api/stock/{add|sell|transfer|shortage}.
// Se informa product_id + quantity, o bien items (sólo ventas de varios productos).
// date es YYYY-MM-DD en hora de Argentina; vacío = ahora.
type StockMovementRequest struct {
	ProductID     string            `json:"product_id,omitempty"`
	Quantity      int               `json:"quantity,omitempty"`
	Items         []SaleItemRequest `json:"items,omitempty"`
	Branch        string            `json:"branch"`
	Destination   string            `json:"destination,omitempty"`
	Date          string            `json:"date,omitempty"`
	Price         *decimal.Decimal  `json:"price,omitempty"`
	Total         *decimal.Decimal  `json:"total,omitempty"`
	SellerID      string            `json:"seller_id,omitempty"`
	FinalConsumer bool              `json:"final_consumer,omitempty"`
	Observations  string            `json:"observations,omitempty"`
}

// SaleItemRequest línea de una venta múltiple. Sin price se usa el precio de lista.
type SaleItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// ProductStockResponse saldos de un producto.
type ProductStockResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CategoryID    string          `json:"category_id,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	StockByBranch map[string]int  `json:"stock_by_branch"`
}

// MovementItemResponse línea de una venta múltiple.
type MovementItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// MovementResponse movimiento del libro.
type MovementResponse struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Branch        string                 `json:"branch"`
	Destination   string                 `json:"destination,omitempty"`
	Date          time.Time              `json:"date"`
	ProductID     string                 `json:"product_id,omitempty"`
	Quantity      int                    `json:"quantity,omitempty"`
	Items         []MovementItemResponse `json:"items,omitempty"`
	Price         *decimal.Decimal       `json:"price,omitempty"`
	Total         *decimal.Decimal       `json:"total,omitempty"`
	SellerID      string                 `json:"seller_id,omitempty"`
	FinalConsumer bool                   `json:"final_consumer"`
	Observations  string                 `json:"observations,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// StockOperationResponse resultado de una operación aceptada.
// Product en operaciones de un solo producto; Products en ventas múltiples.
type StockOperationResponse struct {
	Product  *ProductStockResponse  `json:"product,omitempty"`
	Products []ProductStockResponse `json:"products,omitempty"`
	Movement MovementResponse       `json:"movement"`
}

// MovementListRequest filtros de GET /api/stock/movements.
type MovementListRequest struct {
	From            string `query:"from"`
	To              string `query:"to"`
	Type            string `query:"type"`
	ProductID       string `query:"product_id"`
	Branch          string `query:"branch"`
	SellerID        string `query:"seller_id"`
	HasObservations string `query:"has_observations"`
	PageRequest
}

// MovementListResponse historial paginado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// UpdateMovementNotesRequest body para PATCH /api/stock/movements/:id.
type UpdateMovementNotesRequest struct {
	Observations string `json:"observations"`
}

// RebuildResponse resultado de la reconstrucción de saldos.
type RebuildResponse struct {
	ProductsUpdated   int   `json:"products_updated"`
	ProductsFailed    int   `json:"products_failed"`
	MovementsReplayed int   `json:"movements_replayed"`
	OrphanLines       int   `json:"orphan_lines"`
	DurationMS        int64 `json:"duration_ms"`
}
