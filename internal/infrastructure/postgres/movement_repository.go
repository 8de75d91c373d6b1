package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
// Una venta de varios productos guarda sus líneas en movement_items y deja product_id en NULL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `m.id, m.kind, m.branch, m.destination, m.date, m.product_id, m.quantity, m.unit_price, m.total,
	m.seller_id, m.final_consumer, m.observations, m.created_at`

// Append inserta cabecera y líneas en una misma (sub)transacción.
func (r *MovementRepo) Append(ctx context.Context, movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}

	tx, err := r.q.Begin(ctx)
	if err != nil {
		return domain.Persistence("append movement", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var productID *string
	var quantity *int
	if single, ok := movement.Payload.(entity.SingleItem); ok {
		productID, quantity = &single.ProductID, &single.Quantity
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO movements (id, kind, branch, destination, date, product_id, quantity, unit_price, total,
			seller_id, final_consumer, observations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		movement.ID, string(movement.Kind), movement.Branch, nullable(movement.Destination), movement.Date,
		productID, quantity, movement.UnitPrice, movement.Total,
		nullable(movement.SellerID), movement.FinalConsumer, movement.Observations, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.Persistence("insert movement", err)
	}

	if multi, ok := movement.Payload.(entity.MultiItem); ok {
		for i, it := range multi.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO movement_items (movement_id, position, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)`,
				movement.ID, i, it.ProductID, it.Quantity, it.UnitPrice,
			)
			if err != nil {
				return domain.Persistence("insert movement item", err)
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Persistence("commit movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	list, err := r.query(ctx, `SELECT `+movementColumns+` FROM movements m WHERE m.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListByProductAndBranch movimientos que tocan el par (producto, sucursal).
func (r *MovementRepo) ListByProductAndBranch(ctx context.Context, productID, branch string) ([]*entity.Movement, error) {
	return r.List(ctx, entity.MovementFilter{ProductID: productID, Branch: branch})
}

// List historial filtrado. Más reciente primero; a igual fecha, último insertado primero.
func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	query, args := movementListQuery(f)
	return r.query(ctx, query, args...)
}

// movementListQuery arma el WHERE con los filtros presentes, numerando los parámetros en orden.
func movementListQuery(f entity.MovementFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.From != nil {
		where = append(where, "m.date >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "m.date < "+arg(*f.To))
	}
	if f.Kind != "" {
		where = append(where, "m.kind = "+arg(string(f.Kind)))
	}
	if f.Branch != "" {
		p := arg(f.Branch)
		where = append(where, fmt.Sprintf("(m.branch = %s OR m.destination = %s)", p, p))
	}
	if f.SellerID != "" {
		where = append(where, "m.seller_id = "+arg(f.SellerID))
	}
	if f.HasObservations != nil {
		if *f.HasObservations {
			where = append(where, "btrim(m.observations) <> ''")
		} else {
			where = append(where, "btrim(m.observations) = ''")
		}
	}
	if f.ProductID != "" {
		p := arg(f.ProductID)
		where = append(where, fmt.Sprintf(
			"(m.product_id = %s OR EXISTS (SELECT 1 FROM movement_items i WHERE i.movement_id = m.id AND i.product_id = %s))", p, p))
	}

	query := `SELECT ` + movementColumns + ` FROM movements m`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.date DESC, m.seq DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(f.Limit), arg(f.Offset))
	}
	return query, args
}

// ListAll todo el libro.
func (r *MovementRepo) ListAll(ctx context.Context) ([]*entity.Movement, error) {
	return r.query(ctx, `SELECT `+movementColumns+` FROM movements m ORDER BY m.seq`)
}

// CountByProduct movimientos (de un producto o con una línea del producto).
func (r *MovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM movements m
		WHERE m.product_id = $1
		   OR EXISTS (SELECT 1 FROM movement_items i WHERE i.movement_id = m.id AND i.product_id = $1)`,
		productID,
	).Scan(&n)
	if err != nil {
		return 0, domain.Persistence("count movements by product", err)
	}
	return n, nil
}

// UpdateNotes reemplaza las observaciones; el resto del movimiento no se toca.
func (r *MovementRepo) UpdateNotes(ctx context.Context, id, observations string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE movements SET observations = $2 WHERE id = $1`, id, observations)
	if err != nil {
		return domain.Persistence("update movement notes", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("movimiento", id)
	}
	return nil
}

// query ejecuta la consulta de cabeceras y completa las líneas de las ventas múltiples con una segunda consulta.
func (r *MovementRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Persistence("list movements", err)
	}
	defer rows.Close()

	var (
		list  []*entity.Movement
		multi []string
		byID  = make(map[string]*entity.Movement)
	)
	for rows.Next() {
		var (
			m                              entity.Movement
			kind                           string
			destination, productID, seller *string
			quantity                       *int
			unitPrice, total               *decimal.Decimal
		)
		if err := rows.Scan(&m.ID, &kind, &m.Branch, &destination, &m.Date, &productID, &quantity,
			&unitPrice, &total, &seller, &m.FinalConsumer, &m.Observations, &m.CreatedAt); err != nil {
			return nil, domain.Persistence("scan movement", err)
		}
		m.Kind = entity.MovementKind(kind)
		m.Destination = deref(destination)
		m.SellerID = deref(seller)
		m.UnitPrice, m.Total = unitPrice, total
		if productID != nil && quantity != nil {
			m.Payload = entity.SingleItem{ProductID: *productID, Quantity: *quantity}
		} else {
			m.Payload = entity.MultiItem{}
			multi = append(multi, m.ID)
		}
		list = append(list, &m)
		byID[m.ID] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list movements", err)
	}
	if len(multi) == 0 {
		return list, nil
	}

	items, err := r.q.Query(ctx, `
		SELECT movement_id, product_id, quantity, unit_price
		FROM movement_items WHERE movement_id = ANY($1)
		ORDER BY movement_id, position`, multi)
	if err != nil {
		return nil, domain.Persistence("list movement items", err)
	}
	defer items.Close()
	lines := make(map[string][]entity.SaleItem, len(multi))
	for items.Next() {
		var movementID string
		var it entity.SaleItem
		if err := items.Scan(&movementID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, domain.Persistence("scan movement item", err)
		}
		lines[movementID] = append(lines[movementID], it)
	}
	if err := items.Err(); err != nil {
		return nil, domain.Persistence("list movement items", err)
	}
	for id, its := range lines {
		byID[id].Payload = entity.MultiItem{Items: its}
	}
	return list, nil
}
