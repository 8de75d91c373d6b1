package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.SellerRepository   = (*SellerRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	s *Store
}

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.s.write(false, func() error {
		for _, existing := range r.s.categories {
			if strings.EqualFold(existing.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		cp := *c
		r.s.categories[c.ID] = &cp
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	return r.s.write(false, func() error {
		if _, ok := r.s.categories[c.ID]; !ok {
			return domain.NotFound("categoría", c.ID)
		}
		cp := *c
		r.s.categories[c.ID] = &cp
		return nil
	})
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.RLock()
	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := *c
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	return r.s.write(false, func() error {
		if _, ok := r.s.categories[id]; !ok {
			return domain.NotFound("categoría", id)
		}
		delete(r.s.categories, id)
		return nil
	})
}

// SellerRepo vendedores en memoria.
type SellerRepo struct {
	s *Store
}

func (r *SellerRepo) Create(_ context.Context, seller *entity.Seller) error {
	return r.s.write(false, func() error {
		if _, ok := r.s.sellers[seller.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *seller
		r.s.sellers[seller.ID] = &cp
		return nil
	})
}

func (r *SellerRepo) GetByID(_ context.Context, id string) (*entity.Seller, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.sellers[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SellerRepo) Update(_ context.Context, seller *entity.Seller) error {
	return r.s.write(false, func() error {
		if _, ok := r.s.sellers[seller.ID]; !ok {
			return domain.NotFound("vendedor", seller.ID)
		}
		cp := *seller
		r.s.sellers[seller.ID] = &cp
		return nil
	})
}

func (r *SellerRepo) List(_ context.Context) ([]*entity.Seller, error) {
	r.s.mu.RLock()
	out := make([]*entity.Seller, 0, len(r.s.sellers))
	for _, s := range r.s.sellers {
		cp := *s
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UserRepo usuarios en memoria.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	return r.s.write(false, func() error {
		for _, u := range r.s.users {
			if strings.EqualFold(u.Email, user.Email) {
				return domain.ErrDuplicate
			}
		}
		cp := *user
		r.s.users[user.ID] = &cp
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}
