package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// SellerUseCase casos de uso para vendedores y su porcentaje de comisión.
type SellerUseCase struct {
	repo repository.SellerRepository
}

// NewSellerUseCase construye el caso de uso.
func NewSellerUseCase(repo repository.SellerRepository) *SellerUseCase {
	return &SellerUseCase{repo: repo}
}

// Create da de alta un vendedor activo.
func (uc *SellerUseCase) Create(ctx context.Context, in dto.CreateSellerRequest) (*dto.SellerResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if err := validateBonus(in.BonusPercent); err != nil {
		return nil, err
	}
	now := time.Now()
	s := &entity.Seller{
		ID:           uuid.New().String(),
		Name:         name,
		BonusPercent: in.BonusPercent,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSellerResponse(s), nil
}

// GetByID obtiene un vendedor.
func (uc *SellerUseCase) GetByID(ctx context.Context, id string) (*dto.SellerResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("vendedor", id)
	}
	return toSellerResponse(s), nil
}

// Update modificación parcial. Los vendedores no se borran: se desactivan.
func (uc *SellerUseCase) Update(ctx context.Context, id string, in dto.UpdateSellerRequest) (*dto.SellerResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("vendedor", id)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "requerido")
		}
		s.Name = name
	}
	if in.BonusPercent != nil {
		if err := validateBonus(*in.BonusPercent); err != nil {
			return nil, err
		}
		s.BonusPercent = *in.BonusPercent
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSellerResponse(s), nil
}

// List todos los vendedores.
func (uc *SellerUseCase) List(ctx context.Context) ([]dto.SellerResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SellerResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSellerResponse(s))
	}
	return out, nil
}

func validateBonus(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return domain.Invalid("bonus_percent", "debe estar entre 0 y 100")
	}
	return nil
}

func toSellerResponse(s *entity.Seller) *dto.SellerResponse {
	return &dto.SellerResponse{
		ID:           s.ID,
		Name:         s.Name,
		BonusPercent: s.BonusPercent,
		Active:       s.Active,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
