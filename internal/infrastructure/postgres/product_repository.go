package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
// stock_by_branch es JSONB {"Santa Rosa": n, "Macachín": m}.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, description, price, category_id, stock, stock_by_branch, created_at, updated_at`

// Create persiste un nuevo producto con los saldos que traiga (normalmente cero).
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.StockByBranch == nil {
		product.StockByBranch = entity.EmptyBranchStock()
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Price, nullable(product.CategoryID),
		product.Stock, product.StockByBranch, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.NotFound("categoría", product.CategoryID)
		}
		return domain.Persistence("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) getOne(ctx context.Context, query, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Persistence("get product", err)
	}
	return p, nil
}

// Update actualiza datos de catálogo. Stock y stock_by_branch quedan fuera: sólo los escribe UpdateStock.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, price = $4, category_id = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Price, nullable(product.CategoryID), product.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFound("categoría", product.CategoryID)
		}
		return domain.Persistence("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto", product.ID)
	}
	return nil
}

// UpdateStock persiste los saldos materializados.
func (r *ProductRepo) UpdateStock(ctx context.Context, product *entity.Product) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, stock_by_branch = $3, updated_at = $4 WHERE id = $1`,
		product.ID, product.Stock, product.StockByBranch, product.UpdatedAt,
	)
	if err != nil {
		return domain.Persistence("update product stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto", product.ID)
	}
	return nil
}

// List lista productos ordenados por nombre, opcionalmente de una categoría. limit <= 0 no limita.
func (r *ProductRepo) List(ctx context.Context, categoryID string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if categoryID != "" {
		args = append(args, categoryID)
		query += ` WHERE category_id = $1`
	}
	query += ` ORDER BY lower(name), id`
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}
	return r.list(ctx, query, args...)
}

// ListAll todo el catálogo.
func (r *ProductRepo) ListAll(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Persistence("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Persistence("scan product", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list products", err)
	}
	return list, nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return domain.Persistence("delete product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto", id)
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var categoryID *string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &categoryID,
		&p.Stock, &p.StockByBranch, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CategoryID = deref(categoryID)
	// sucursales agregadas después de crear el producto aparecen en cero
	for _, b := range entity.Branches {
		if _, ok := p.StockByBranch[b]; !ok {
			if p.StockByBranch == nil {
				p.StockByBranch = entity.EmptyBranchStock()
				break
			}
			p.StockByBranch[b] = 0
		}
	}
	return &p, nil
}
