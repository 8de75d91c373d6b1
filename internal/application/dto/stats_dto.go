package dto

import "github.com/shopspring/decimal"

// StatsSummaryRequest filtros de GET /api/stats/summary. Fechas YYYY-MM-DD inclusive.
type StatsSummaryRequest struct {
	From   string `query:"from"`
	To     string `query:"to"`
	Branch string `query:"branch"`
}

// StatsSummaryResponse resumen del período.
type StatsSummaryResponse struct {
	From               string              `json:"from,omitempty"`
	To                 string              `json:"to,omitempty"`
	Branch             string              `json:"branch,omitempty"`
	ByKind             []KindBranchStatDTO `json:"by_kind"`
	Sellers            []SellerStatDTO     `json:"sellers"`
	TopProducts        []TopProductDTO     `json:"top_products"`
	SalesCount         int                 `json:"sales_count"`
	FinalConsumerSales int                 `json:"final_consumer_sales"`
	Revenue            decimal.Decimal     `json:"revenue"`
}

// KindBranchStatDTO unidades e importe por tipo de movimiento y sucursal.
type KindBranchStatDTO struct {
	Type      string          `json:"type"`
	Branch    string          `json:"branch"`
	Movements int             `json:"movements"`
	Units     int             `json:"units"`
	Amount    decimal.Decimal `json:"amount"`
}

// SellerStatDTO ventas atribuidas a un vendedor y su comisión (total × bonus% / 100).
type SellerStatDTO struct {
	SellerID     string          `json:"seller_id"`
	Name         string          `json:"name"`
	Sales        int             `json:"sales"`
	Total        decimal.Decimal `json:"total"`
	BonusPercent decimal.Decimal `json:"bonus_percent"`
	Bonus        decimal.Decimal `json:"bonus"`
}

// TopProductDTO producto por unidades vendidas.
type TopProductDTO struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}
