package ports

import (
	"context"
	"time"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

// Cache caché de lecturas derivadas (inventario, estadísticas).
// Invalidate descarta todas las entradas vigentes; se llama después de cada movimiento aceptado.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// MovementPublisher notifica movimientos aceptados a consumidores externos.
// La publicación ocurre después del commit y nunca hace fallar la operación.
type MovementPublisher interface {
	Publish(ctx context.Context, movement *entity.Movement)
}

// StockMetrics contadores de operaciones de stock.
type StockMetrics interface {
	MovementAccepted(kind entity.MovementKind)
	MovementRejected(kind entity.MovementKind, reason string)
	ProjectionFailed(kind entity.MovementKind)
	RebuildCompleted(elapsed time.Duration, updated, failed int)
}

// ReceiptGenerator genera el comprobante PDF de una venta.
type ReceiptGenerator interface {
	GenerateReceipt(data ReceiptData) ([]byte, error)
}

// ReceiptLine renglón del comprobante.
type ReceiptLine struct {
	ProductName string
	Quantity    int
	UnitPrice   string
	Subtotal    string
}

// ReceiptData datos ya formateados para el comprobante.
type ReceiptData struct {
	BusinessName  string
	Footnote      string
	MovementID    string
	Branch        string
	Date          string
	SellerName    string
	FinalConsumer bool
	Lines         []ReceiptLine
	Total         string
	Observations  string
}

// MovementExporter genera una planilla con el historial de movimientos.
type MovementExporter interface {
	ExportMovements(rows []ExportRow) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportRow una fila por línea de movimiento (las ventas múltiples generan varias filas).
type ExportRow struct {
	MovementID    string
	Date          string
	Kind          string
	Branch        string
	Destination   string
	ProductID     string
	ProductName   string
	Quantity      int
	UnitPrice     string
	Total         string
	SellerName    string
	FinalConsumer bool
	Observations  string
}

// NoopCache caché deshabilitada: nunca encuentra nada.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (NoopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (NoopCache) Invalidate(context.Context) error                      { return nil }

// NoopPublisher descarta los movimientos.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *entity.Movement) {}

// NoopMetrics no registra nada.
type NoopMetrics struct{}

func (NoopMetrics) MovementAccepted(entity.MovementKind)         {}
func (NoopMetrics) MovementRejected(entity.MovementKind, string) {}
func (NoopMetrics) ProjectionFailed(entity.MovementKind)         {}
func (NoopMetrics) RebuildCompleted(time.Duration, int, int)     {}
