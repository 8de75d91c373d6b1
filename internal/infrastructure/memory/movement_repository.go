package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos en memoria (append-only salvo observaciones).
type MovementRepo struct {
	s    *Store
	inTx bool
}

func (r *MovementRepo) Append(_ context.Context, movement *entity.Movement) error {
	return r.s.write(r.inTx, func() error {
		if movement.ID == "" {
			movement.ID = uuid.New().String()
		}
		if _, ok := r.s.movementIdx[movement.ID]; ok {
			return domain.ErrDuplicate
		}
		if movement.CreatedAt.IsZero() {
			movement.CreatedAt = movement.Date
		}
		r.s.movementIdx[movement.ID] = len(r.s.movements)
		r.s.movements = append(r.s.movements, cloneMovement(movement))
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.movementIdx[id]
	if !ok {
		return nil, nil
	}
	return cloneMovement(r.s.movements[i]), nil
}

func (r *MovementRepo) ListByProductAndBranch(_ context.Context, productID, branch string) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.Touches(productID, branch) {
			out = append(out, cloneMovement(m))
		}
	}
	return out, nil
}

// List más reciente primero; a igual fecha, el último registrado primero.
func (r *MovementRepo) List(_ context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	type indexed struct {
		seq int
		m   *entity.Movement
	}
	var matched []indexed
	for i, m := range r.s.movements {
		if filter.Matches(m) {
			matched = append(matched, indexed{seq: i, m: cloneMovement(m)})
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].m.Date.Equal(matched[j].m.Date) {
			return matched[i].m.Date.After(matched[j].m.Date)
		}
		return matched[i].seq > matched[j].seq
	})
	out := make([]*entity.Movement, 0, len(matched))
	for _, it := range matched {
		out = append(out, it.m)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *MovementRepo) ListAll(_ context.Context) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Movement, 0, len(r.s.movements))
	for _, m := range r.s.movements {
		out = append(out, cloneMovement(m))
	}
	return out, nil
}

func (r *MovementRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.movements {
		for _, l := range m.Lines() {
			if l.ProductID == productID {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *MovementRepo) UpdateNotes(_ context.Context, id, observations string) error {
	return r.s.write(r.inTx, func() error {
		i, ok := r.s.movementIdx[id]
		if !ok {
			return domain.NotFound("movimiento", id)
		}
		next := cloneMovement(r.s.movements[i])
		next.Observations = observations
		r.s.movements[i] = next
		return nil
	})
}

func cloneMovement(m *entity.Movement) *entity.Movement {
	c := *m
	if m.UnitPrice != nil {
		v := *m.UnitPrice
		c.UnitPrice = &v
	}
	if m.Total != nil {
		v := *m.Total
		c.Total = &v
	}
	if multi, ok := m.Payload.(entity.MultiItem); ok {
		c.Payload = entity.MultiItem{Items: append([]entity.SaleItem(nil), multi.Items...)}
	}
	return &c
}
