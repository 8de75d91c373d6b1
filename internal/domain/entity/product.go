package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su stock materializado.
// Stock y StockByBranch son una vista derivada del libro de movimientos: sólo el proyector los modifica.
// Invariantes: Stock == suma de StockByBranch; ninguna sucursal en negativo.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal // precio de venta unitario
	CategoryID    string
	Stock         int
	StockByBranch map[string]int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProduct crea un producto con stock en cero en todas las sucursales.
func NewProduct(id, name string, price decimal.Decimal, categoryID string, now time.Time) *Product {
	return &Product{
		ID:            id,
		Name:          name,
		Price:         price,
		CategoryID:    categoryID,
		Stock:         0,
		StockByBranch: EmptyBranchStock(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// BranchStock stock en la sucursal (0 si no hay entrada).
func (p *Product) BranchStock(branch string) int {
	if p.StockByBranch == nil {
		return 0
	}
	return p.StockByBranch[branch]
}

// ResetStock pone todas las sucursales conocidas en cero.
func (p *Product) ResetStock() {
	p.Stock = 0
	p.StockByBranch = EmptyBranchStock()
}

// Clone copia profunda (el mapa de sucursales no se comparte).
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.StockByBranch = make(map[string]int, len(p.StockByBranch))
	for k, v := range p.StockByBranch {
		c.StockByBranch[k] = v
	}
	return &c
}

// StockConsistent verifica Stock == Σ StockByBranch y que no haya sucursales en negativo.
func (p *Product) StockConsistent() bool {
	sum := 0
	for _, q := range p.StockByBranch {
		if q < 0 {
			return false
		}
		sum += q
	}
	return sum == p.Stock
}
