package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seller vendedor/a al que se atribuyen ventas para el cálculo de comisiones.
// BonusPercent es un porcentaje (10 = 10%).
type Seller struct {
	ID           string
	Name         string
	BonusPercent decimal.Decimal
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
