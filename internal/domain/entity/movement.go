package entity

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/aromas-stock/internal/domain"
)

// MovementKind tipo de movimiento de stock.
type MovementKind string

// Tipos de movimiento del libro de stock.
const (
	MovementAdd      MovementKind = "add"      // carga de mercadería
	MovementSell     MovementKind = "sell"     // venta
	MovementTransfer MovementKind = "transfer" // traslado entre sucursales
	MovementShortage MovementKind = "shortage" // faltante
)

// MaxQuantity cantidad máxima por línea y saldo máximo por producto (columnas INTEGER en PostgreSQL).
const MaxQuantity = math.MaxInt32

// MovementKinds lista de tipos válidos.
var MovementKinds = []MovementKind{MovementAdd, MovementSell, MovementTransfer, MovementShortage}

// ParseMovementKind valida un tipo recibido como texto.
func ParseMovementKind(s string) (MovementKind, bool) {
	k := MovementKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MovementKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// MovementLine par producto/cantidad afectado por un movimiento.
type MovementLine struct {
	ProductID string
	Quantity  int
}

// MovementPayload contenido de un movimiento: SingleItem o MultiItem.
// Es una unión cerrada; sólo los tipos de este paquete la implementan.
type MovementPayload interface {
	Lines() []MovementLine
	isMovementPayload()
}

// SingleItem un producto y una cantidad.
type SingleItem struct {
	ProductID string
	Quantity  int
}

// Lines implementa MovementPayload.
func (s SingleItem) Lines() []MovementLine {
	return []MovementLine{{ProductID: s.ProductID, Quantity: s.Quantity}}
}

func (SingleItem) isMovementPayload() {}

// SaleItem línea de una venta con varios productos.
type SaleItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// MultiItem venta de varios productos en la misma sucursal.
type MultiItem struct {
	Items []SaleItem
}

// Lines implementa MovementPayload.
func (m MultiItem) Lines() []MovementLine {
	out := make([]MovementLine, 0, len(m.Items))
	for _, it := range m.Items {
		out = append(out, MovementLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func (MultiItem) isMovementPayload() {}

// Movement entrada inmutable del libro de stock.
// Branch es la sucursal afectada (origen en traslados); Destination sólo se usa en traslados.
type Movement struct {
	ID            string
	Kind          MovementKind
	Branch        string
	Destination   string
	Date          time.Time
	Payload       MovementPayload
	UnitPrice     *decimal.Decimal
	Total         *decimal.Decimal
	SellerID      string
	FinalConsumer bool
	Observations  string
	CreatedAt     time.Time
}

// NewMovement construye un movimiento y verifica sus invariantes estructurales.
func NewMovement(m Movement) (*Movement, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate verifica las invariantes de forma: exactamente un contenido, sucursales conocidas,
// destino sólo en traslados y distinto del origen, cantidades positivas.
// No consulta disponibilidad: eso es responsabilidad del validador de operaciones.
func (m *Movement) Validate() error {
	if _, ok := ParseMovementKind(string(m.Kind)); !ok {
		return domain.Invalid("type", "tipo de movimiento desconocido")
	}
	if !IsBranch(m.Branch) {
		return domain.Invalid("branch", "sucursal desconocida")
	}
	if m.Kind == MovementTransfer {
		if !IsBranch(m.Destination) {
			return domain.Invalid("destination", "sucursal de destino desconocida")
		}
		if m.Destination == m.Branch {
			return domain.Invalid("destination", "origen y destino deben ser distintos")
		}
	} else if m.Destination != "" {
		return domain.Invalid("destination", "sólo los traslados tienen destino")
	}

	switch p := m.Payload.(type) {
	case SingleItem:
		if strings.TrimSpace(p.ProductID) == "" {
			return domain.Invalid("product_id", "requerido")
		}
		if p.Quantity <= 0 {
			return domain.Invalid("quantity", "debe ser un entero positivo")
		}
		if p.Quantity > MaxQuantity {
			return domain.Invalid("quantity", "supera el máximo admitido")
		}
	case MultiItem:
		if m.Kind != MovementSell {
			return domain.Invalid("items", "sólo las ventas admiten varios productos")
		}
		if len(p.Items) == 0 {
			return domain.Invalid("items", "la venta no tiene productos")
		}
		for _, it := range p.Items {
			if strings.TrimSpace(it.ProductID) == "" {
				return domain.Invalid("items.product_id", "requerido")
			}
			if it.Quantity <= 0 {
				return domain.Invalid("items.quantity", "debe ser un entero positivo")
			}
			if it.Quantity > MaxQuantity {
				return domain.Invalid("items.quantity", "supera el máximo admitido")
			}
			if it.UnitPrice.IsNegative() {
				return domain.Invalid("items.price", "no puede ser negativo")
			}
		}
	case nil:
		return domain.Invalid("product_id", "se requiere un producto o una lista de productos")
	default:
		return domain.Invalid("product_id", "contenido de movimiento no soportado")
	}
	return nil
}

// Lines devuelve las líneas producto/cantidad del movimiento.
func (m *Movement) Lines() []MovementLine {
	if m.Payload == nil {
		return nil
	}
	return m.Payload.Lines()
}

// IsMultiItem indica si el movimiento es una venta de varios productos.
func (m *Movement) IsMultiItem() bool {
	_, ok := m.Payload.(MultiItem)
	return ok
}

// ProductIDs ids de producto distintos, ordenados.
func (m *Movement) ProductIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, l := range m.Lines() {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	sort.Strings(ids)
	return ids
}

// Touches indica si el movimiento referencia el producto en la sucursal (como origen o destino).
func (m *Movement) Touches(productID, branch string) bool {
	if m.Branch != branch && m.Destination != branch {
		return false
	}
	for _, l := range m.Lines() {
		if l.ProductID == productID {
			return true
		}
	}
	return false
}

// Amount importe de la venta: Total si fue informado; si no, la suma de precio × cantidad.
func (m *Movement) Amount() decimal.Decimal {
	if m.Total != nil {
		return *m.Total
	}
	switch p := m.Payload.(type) {
	case MultiItem:
		sum := decimal.Zero
		for _, it := range p.Items {
			sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		return sum
	case SingleItem:
		if m.UnitPrice != nil {
			return m.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
		}
	}
	return decimal.Zero
}

// MovementFilter filtros para el historial de movimientos. Campos vacíos no filtran.
type MovementFilter struct {
	From            *time.Time
	To              *time.Time
	Kind            MovementKind
	ProductID       string
	Branch          string // coincide con origen o destino
	SellerID        string
	HasObservations *bool
	Limit           int
	Offset          int
}

// Matches aplica el filtro en memoria (usado por el store en memoria y las estadísticas).
func (f MovementFilter) Matches(m *Movement) bool {
	if f.From != nil && m.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !m.Date.Before(*f.To) {
		return false
	}
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if f.Branch != "" && m.Branch != f.Branch && m.Destination != f.Branch {
		return false
	}
	if f.SellerID != "" && m.SellerID != f.SellerID {
		return false
	}
	if f.HasObservations != nil && (strings.TrimSpace(m.Observations) != "") != *f.HasObservations {
		return false
	}
	if f.ProductID != "" {
		found := false
		for _, l := range m.Lines() {
			if l.ProductID == f.ProductID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
