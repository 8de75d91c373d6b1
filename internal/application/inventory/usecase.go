package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/application/ports"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
	"github.com/jhoicas/aromas-stock/internal/domain/stock"
	"github.com/jhoicas/aromas-stock/pkg/civildate"
	"github.com/jhoicas/aromas-stock/pkg/keylock"
)

const inventoryCacheKey = "inventory"

// StockUseCase valida y registra las operaciones de stock (carga, venta, traslado, faltante)
// y mantiene los saldos materializados de cada producto.
//
// Cada operación sigue el mismo camino: se bloquean los productos involucrados (en memoria y con
// SELECT FOR UPDATE), se lee la disponibilidad de la sucursal desde el libro, se agrega el movimiento
// y se proyectan los saldos dentro de un savepoint. Si la proyección falla el movimiento queda
// registrado igual y RebuildBalances corrige los saldos.
type StockUseCase struct {
	tx        TxRunner
	products  repository.ProductRepository
	movements repository.MovementRepository
	sellers   repository.SellerRepository
	locks     *keylock.Locker
	cal       civildate.Calendar
	cache     ports.Cache
	cacheTTL  time.Duration
	publisher ports.MovementPublisher
	metrics   ports.StockMetrics
	log       zerolog.Logger
}

// Option configura colaboradores opcionales del caso de uso.
type Option func(*StockUseCase)

// WithCalendar zona horaria del negocio (por defecto UTC−3).
func WithCalendar(c civildate.Calendar) Option { return func(uc *StockUseCase) { uc.cal = c } }

// WithCache caché del inventario; se invalida con cada movimiento aceptado.
func WithCache(c ports.Cache, ttl time.Duration) Option {
	return func(uc *StockUseCase) { uc.cache, uc.cacheTTL = c, ttl }
}

// WithPublisher publicación de movimientos aceptados.
func WithPublisher(p ports.MovementPublisher) Option {
	return func(uc *StockUseCase) { uc.publisher = p }
}

// WithMetrics contadores de operaciones.
func WithMetrics(m ports.StockMetrics) Option { return func(uc *StockUseCase) { uc.metrics = m } }

// WithLogger logger del componente.
func WithLogger(l zerolog.Logger) Option { return func(uc *StockUseCase) { uc.log = l } }

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	products repository.ProductRepository,
	movements repository.MovementRepository,
	sellers repository.SellerRepository,
	opts ...Option,
) *StockUseCase {
	uc := &StockUseCase{
		tx:        txRunner,
		products:  products,
		movements: movements,
		sellers:   sellers,
		locks:     keylock.New(),
		cal:       civildate.Default(),
		cache:     ports.NoopCache{},
		cacheTTL:  time.Minute,
		publisher: ports.NoopPublisher{},
		metrics:   ports.NoopMetrics{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Add carga de mercadería en una sucursal.
func (uc *StockUseCase) Add(ctx context.Context, in dto.StockMovementRequest) (*dto.StockOperationResponse, error) {
	return uc.register(ctx, entity.MovementAdd, in)
}

// Sell venta en una sucursal. Acepta un producto (product_id + quantity) o varios (items).
func (uc *StockUseCase) Sell(ctx context.Context, in dto.StockMovementRequest) (*dto.StockOperationResponse, error) {
	return uc.register(ctx, entity.MovementSell, in)
}

// SellItems venta de varios productos: se acepta entera o no se registra nada.
func (uc *StockUseCase) SellItems(ctx context.Context, in dto.StockMovementRequest) (*dto.StockOperationResponse, error) {
	if len(in.Items) == 0 {
		return nil, uc.reject(entity.MovementSell, domain.Invalid("items", "la venta no tiene productos"))
	}
	return uc.register(ctx, entity.MovementSell, in)
}

// Transfer traslado entre sucursales; el stock global no cambia.
func (uc *StockUseCase) Transfer(ctx context.Context, in dto.StockMovementRequest) (*dto.StockOperationResponse, error) {
	return uc.register(ctx, entity.MovementTransfer, in)
}

// Shortage faltante (rotura, pérdida) en una sucursal.
func (uc *StockUseCase) Shortage(ctx context.Context, in dto.StockMovementRequest) (*dto.StockOperationResponse, error) {
	return uc.register(ctx, entity.MovementShortage, in)
}

func (uc *StockUseCase) register(ctx context.Context, kind entity.MovementKind, in dto.StockMovementRequest) (*dto.StockOperationResponse, error) {
	m, err := uc.buildMovement(ctx, kind, in)
	if err != nil {
		return nil, uc.reject(kind, err)
	}
	if m.SellerID != "" {
		seller, err := uc.sellers.GetByID(ctx, m.SellerID)
		if err != nil {
			return nil, uc.reject(kind, err)
		}
		if seller == nil {
			return nil, uc.reject(kind, domain.NotFound("vendedor", m.SellerID))
		}
	}

	ids := m.ProductIDs()
	unlock := uc.locks.Lock(ids...)
	defer unlock()

	var balances []*entity.Product
	err = uc.tx.Run(ctx, func(tx Tx) error {
		current := make([]*entity.Product, 0, len(ids))
		for _, id := range ids {
			p, err := tx.Products().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NotFound("producto", id)
			}
			current = append(current, p)
		}
		if err := checkAvailability(ctx, tx.Movements(), m, current); err != nil {
			return err
		}
		if err := tx.Movements().Append(ctx, m); err != nil {
			return err
		}
		balances = uc.project(ctx, tx, m, current)
		return nil
	})
	if err != nil {
		return nil, uc.reject(kind, err)
	}

	uc.accepted(ctx, m)
	return toOperationResponse(m, balances), nil
}

// checkAvailability la sucursal debe tener stock suficiente según el libro (las líneas del mismo
// producto se suman). En ventas además el stock global materializado debe alcanzar.
// Ningún saldo resultante puede superar entity.MaxQuantity.
func checkAvailability(ctx context.Context, movements repository.MovementRepository, m *entity.Movement, current []*entity.Product) error {
	for _, p := range current {
		if !stock.Fits(p, m) {
			return domain.Invalid("quantity", "el saldo resultante supera el máximo admitido")
		}
	}
	if m.Kind == entity.MovementAdd {
		return nil
	}
	requested := make(map[string]int)
	for _, l := range m.Lines() {
		if l.Quantity > entity.MaxQuantity-requested[l.ProductID] {
			return domain.Invalid("items.quantity", "la cantidad total del producto supera el máximo admitido")
		}
		requested[l.ProductID] += l.Quantity
	}
	for _, p := range current {
		qty := requested[p.ID]
		history, err := movements.ListByProductAndBranch(ctx, p.ID, m.Branch)
		if err != nil {
			return err
		}
		available := stock.Availability(history, p.ID, m.Branch)
		if available < qty {
			return &domain.InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Branch: m.Branch, Available: available, Requested: qty}
		}
		if m.Kind == entity.MovementSell && p.Stock < qty {
			return &domain.InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: qty}
		}
	}
	return nil
}

// project aplica el movimiento a los saldos dentro de un savepoint. Devuelve los saldos nuevos,
// o los anteriores si la proyección falló (el movimiento ya está en el libro).
func (uc *StockUseCase) project(ctx context.Context, tx Tx, m *entity.Movement, current []*entity.Product) []*entity.Product {
	now := uc.cal.Now()
	next := make([]*entity.Product, 0, len(current))
	err := tx.Savepoint(ctx, func(products repository.ProductRepository) error {
		for _, p := range current {
			np := p.Clone()
			stock.Apply(np, m)
			if err := stock.CheckInvariants(np); err != nil {
				return err
			}
			np.UpdatedAt = now
			if err := products.UpdateStock(ctx, np); err != nil {
				return err
			}
			next = append(next, np)
		}
		return nil
	})
	if err != nil {
		uc.metrics.ProjectionFailed(m.Kind)
		uc.log.Warn().Err(err).
			Str("movement_id", m.ID).
			Str("type", string(m.Kind)).
			Strs("product_ids", m.ProductIDs()).
			Msg("saldos sin actualizar: el movimiento quedó registrado, ejecutar reconstrucción")
		return current
	}
	return next
}

func (uc *StockUseCase) reject(kind entity.MovementKind, err error) error {
	reason := "persistence"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		reason = "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		reason = "insufficient_stock"
	}
	uc.metrics.MovementRejected(kind, reason)
	if reason == "persistence" {
		uc.log.Error().Err(err).Str("type", string(kind)).Msg("error registrando movimiento")
	} else {
		uc.log.Debug().Err(err).Str("type", string(kind)).Str("reason", reason).Msg("movimiento rechazado")
	}
	return err
}

func (uc *StockUseCase) accepted(ctx context.Context, m *entity.Movement) {
	uc.metrics.MovementAccepted(m.Kind)
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché")
	}
	uc.publisher.Publish(ctx, m)
	uc.log.Info().
		Str("movement_id", m.ID).
		Str("type", string(m.Kind)).
		Str("branch", m.Branch).
		Strs("product_ids", m.ProductIDs()).
		Msg("movimiento registrado")
}

// ListInventory saldos de todos los productos, ordenados por nombre.
func (uc *StockUseCase) ListInventory(ctx context.Context) ([]dto.ProductStockResponse, error) {
	var cached []dto.ProductStockResponse
	if ok, err := uc.cache.Get(ctx, inventoryCacheKey, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		uc.log.Warn().Err(err).Msg("lectura de caché fallida")
	}

	products, err := uc.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(products, func(i, j int) bool {
		return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
	})
	out := make([]dto.ProductStockResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductStock(p))
	}
	if err := uc.cache.Set(ctx, inventoryCacheKey, out, uc.cacheTTL); err != nil {
		uc.log.Warn().Err(err).Msg("escritura de caché fallida")
	}
	return out, nil
}

// Branches sucursales con sus totales de stock materializado.
func (uc *StockUseCase) Branches(ctx context.Context) ([]dto.BranchResponse, error) {
	products, err := uc.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BranchResponse, 0, len(entity.Branches))
	for _, b := range entity.Branches {
		r := dto.BranchResponse{Name: b}
		for _, p := range products {
			if q := p.BranchStock(b); q > 0 {
				r.TotalUnits += q
				r.ProductsWithStock++
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// ListMovements historial filtrado, más reciente primero.
func (uc *StockUseCase) ListMovements(ctx context.Context, req dto.MovementListRequest) (*dto.MovementListResponse, error) {
	filter, err := ParseMovementFilter(uc.cal, req)
	if err != nil {
		return nil, err
	}
	list, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// GetMovement movimiento por ID.
func (uc *StockUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("movimiento", id)
	}
	out := toMovementResponse(m)
	return &out, nil
}

// UpdateMovementNotes única edición permitida sobre un movimiento: las observaciones.
// Las correcciones de cantidades se hacen registrando un movimiento nuevo.
func (uc *StockUseCase) UpdateMovementNotes(ctx context.Context, id string, in dto.UpdateMovementNotesRequest) (*dto.MovementResponse, error) {
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("movimiento", id)
	}
	notes := strings.TrimSpace(in.Observations)
	if len(notes) > 1000 {
		return nil, domain.Invalid("observations", "máximo 1000 caracteres")
	}
	if err := uc.movements.UpdateNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	m.Observations = notes
	out := toMovementResponse(m)
	return &out, nil
}

// RebuildBalances recalcula los saldos de todos los productos desde el libro completo.
// Cada producto se recalcula en su propia transacción: un fallo se registra y se cuenta sin cortar el resto.
// Mientras corre, las operaciones de este proceso sobre los productos quedan en espera; las de otro
// proceso se ordenan por el bloqueo de fila de cada producto.
func (uc *StockUseCase) RebuildBalances(ctx context.Context) (*dto.RebuildResponse, error) {
	start := time.Now()

	products, err := uc.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	unlock := uc.locks.Lock(ids...)
	defer unlock()

	// La lectura global sólo alimenta el informe (movimientos y líneas huérfanas); los saldos
	// se calculan con el historial releído dentro de la transacción de cada producto.
	movements, err := uc.movements.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	report := stock.Replay(products, movements)
	out := &dto.RebuildResponse{MovementsReplayed: report.MovementsReplayed, OrphanLines: len(report.Orphans)}

	sort.Strings(ids)
	for _, id := range ids {
		updated, err := uc.rebuildProduct(ctx, id)
		if err != nil {
			out.ProductsFailed++
			uc.log.Error().Err(err).Str("product_id", id).Msg("reconstrucción: no se pudo guardar el saldo")
			continue
		}
		if updated {
			out.ProductsUpdated++
		}
	}
	for _, o := range report.Orphans {
		uc.log.Warn().Str("movement_id", o.MovementID).Str("product_id", o.ProductID).
			Msg("reconstrucción: movimiento con producto inexistente")
	}

	elapsed := time.Since(start)
	out.DurationMS = elapsed.Milliseconds()
	uc.metrics.RebuildCompleted(elapsed, out.ProductsUpdated, out.ProductsFailed)
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché")
	}
	uc.log.Info().
		Int("products_updated", out.ProductsUpdated).
		Int("products_failed", out.ProductsFailed).
		Int("movements_replayed", out.MovementsReplayed).
		Int("orphan_lines", out.OrphanLines).
		Dur("elapsed", elapsed).
		Msg("reconstrucción de saldos finalizada")
	return out, nil
}

// rebuildProduct bloquea la fila del producto, relee su historial en la misma transacción y
// guarda la suma. Devuelve false si el producto ya no existe.
func (uc *StockUseCase) rebuildProduct(ctx context.Context, id string) (bool, error) {
	updated := false
	err := uc.tx.Run(ctx, func(tx Tx) error {
		p, err := tx.Products().GetForUpdate(ctx, id)
		if err != nil || p == nil {
			return err
		}
		history, err := productHistory(ctx, tx.Movements(), id)
		if err != nil {
			return err
		}
		np := stock.Replay([]*entity.Product{p}, history).Products[id]
		if err := stock.CheckInvariants(np); err != nil {
			return err
		}
		np.UpdatedAt = uc.cal.Now()
		if err := tx.Products().UpdateStock(ctx, np); err != nil {
			return err
		}
		updated = true
		return nil
	})
	return updated, err
}

// productHistory movimientos que tocan el producto en cualquier sucursal, sin repetir traslados.
func productHistory(ctx context.Context, movements repository.MovementRepository, productID string) ([]*entity.Movement, error) {
	seen := make(map[string]struct{})
	var out []*entity.Movement
	for _, b := range entity.Branches {
		list, err := movements.ListByProductAndBranch(ctx, productID, b)
		if err != nil {
			return nil, err
		}
		for _, m := range list {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}
