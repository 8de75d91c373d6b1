package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.SellerRepository   = (*SellerRepo)(nil)
)

// CategoryRepo categorías de productos. El nombre es único sin distinguir mayúsculas.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO categories (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.Persistence("insert category", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var c entity.Category
	err := r.q.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Persistence("get category", err)
	}
	return &c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE categories SET name = $2, updated_at = $3 WHERE id = $1`, c.ID, c.Name, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.Persistence("update category", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("categoría", c.ID)
	}
	return nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, domain.Persistence("list categories", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, domain.Persistence("scan category", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list categories", err)
	}
	return list, nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return domain.Persistence("delete category", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("categoría", id)
	}
	return nil
}

// SellerRepo vendedores. No hay borrado: se desactivan.
type SellerRepo struct {
	q Querier
}

// NewSellerRepository construye el adaptador.
func NewSellerRepository(q Querier) *SellerRepo {
	return &SellerRepo{q: q}
}

func (r *SellerRepo) Create(ctx context.Context, s *entity.Seller) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sellers (id, name, bonus_percent, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, s.BonusPercent, s.Active, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.Persistence("insert seller", err)
	}
	return nil
}

func (r *SellerRepo) GetByID(ctx context.Context, id string) (*entity.Seller, error) {
	var s entity.Seller
	err := r.q.QueryRow(ctx,
		`SELECT id, name, bonus_percent, active, created_at, updated_at FROM sellers WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.BonusPercent, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Persistence("get seller", err)
	}
	return &s, nil
}

func (r *SellerRepo) Update(ctx context.Context, s *entity.Seller) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sellers SET name = $2, bonus_percent = $3, active = $4, updated_at = $5 WHERE id = $1`,
		s.ID, s.Name, s.BonusPercent, s.Active, s.UpdatedAt,
	)
	if err != nil {
		return domain.Persistence("update seller", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("vendedor", s.ID)
	}
	return nil
}

func (r *SellerRepo) List(ctx context.Context) ([]*entity.Seller, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, bonus_percent, active, created_at, updated_at FROM sellers ORDER BY name`)
	if err != nil {
		return nil, domain.Persistence("list sellers", err)
	}
	defer rows.Close()
	var list []*entity.Seller
	for rows.Next() {
		var s entity.Seller
		if err := rows.Scan(&s.ID, &s.Name, &s.BonusPercent, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, domain.Persistence("scan seller", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list sellers", err)
	}
	return list, nil
}
