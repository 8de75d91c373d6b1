package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s    *Store
	inTx bool
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.s.write(r.inTx, func() error {
		if _, ok := r.s.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		r.s.products[product.ID] = product.Clone()
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

// GetForUpdate en memoria el bloqueo lo da la transacción exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.s.write(r.inTx, func() error {
		cur, ok := r.s.products[product.ID]
		if !ok {
			return domain.NotFound("producto", product.ID)
		}
		next := product.Clone()
		next.Stock = cur.Stock
		next.StockByBranch = cur.Clone().StockByBranch
		next.CreatedAt = cur.CreatedAt
		r.s.products[product.ID] = next
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, product *entity.Product) error {
	return r.s.write(r.inTx, func() error {
		if r.s.stockFault != nil {
			if err := r.s.stockFault(product.ID); err != nil {
				return domain.Persistence("update product stock", err)
			}
		}
		cur, ok := r.s.products[product.ID]
		if !ok {
			return domain.NotFound("producto", product.ID)
		}
		next := cur.Clone()
		next.Stock = product.Stock
		next.StockByBranch = product.Clone().StockByBranch
		next.UpdatedAt = product.UpdatedAt
		r.s.products[product.ID] = next
		return nil
	})
}

// List productos ordenados por nombre, opcionalmente de una categoría.
func (r *ProductRepo) List(_ context.Context, categoryID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if categoryID == "" || p.CategoryID == categoryID {
			out = append(out, p.Clone())
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return page(out, limit, offset), nil
}

func (r *ProductRepo) ListAll(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.s.write(r.inTx, func() error {
		if _, ok := r.s.products[id]; !ok {
			return domain.NotFound("producto", id)
		}
		delete(r.s.products, id)
		return nil
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
