package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

// buildMovement traduce el request HTTP a un movimiento del libro y verifica su forma.
// Las sucursales se normalizan ("macachin" → "Macachín"). En ventas sin precio se toma el de lista
// y el total, si no viene, es la suma de precio × cantidad.
func (uc *StockUseCase) buildMovement(ctx context.Context, kind entity.MovementKind, in dto.StockMovementRequest) (*entity.Movement, error) {
	branch, ok := entity.NormalizeBranch(in.Branch)
	if !ok {
		return nil, domain.Invalid("branch", fmt.Sprintf("sucursal desconocida: %q", in.Branch))
	}
	dest := strings.TrimSpace(in.Destination)
	if kind == entity.MovementTransfer {
		d, ok := entity.NormalizeBranch(dest)
		if !ok {
			return nil, domain.Invalid("destination", fmt.Sprintf("sucursal de destino desconocida: %q", in.Destination))
		}
		dest = d
	}
	date, err := uc.cal.DateOrNow(in.Date)
	if err != nil {
		return nil, domain.Invalid("date", err.Error())
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, domain.Invalid("price", "no puede ser negativo")
	}
	if in.Total != nil && in.Total.IsNegative() {
		return nil, domain.Invalid("total", "no puede ser negativo")
	}

	m := entity.Movement{
		Kind:          kind,
		Branch:        branch,
		Destination:   dest,
		Date:          date,
		UnitPrice:     in.Price,
		Total:         in.Total,
		SellerID:      strings.TrimSpace(in.SellerID),
		FinalConsumer: in.FinalConsumer,
		Observations:  strings.TrimSpace(in.Observations),
		CreatedAt:     uc.cal.Now(),
	}

	if len(in.Items) > 0 {
		if strings.TrimSpace(in.ProductID) != "" {
			return nil, domain.Invalid("items", "informar product_id o items, no ambos")
		}
		items := make([]entity.SaleItem, 0, len(in.Items))
		for _, it := range in.Items {
			item := entity.SaleItem{ProductID: strings.TrimSpace(it.ProductID), Quantity: it.Quantity}
			if it.Price != nil {
				item.UnitPrice = *it.Price
			} else if kind == entity.MovementSell && item.ProductID != "" {
				price, err := uc.listPrice(ctx, item.ProductID)
				if err != nil {
					return nil, err
				}
				item.UnitPrice = price
			}
			items = append(items, item)
		}
		m.Payload = entity.MultiItem{Items: items}
	} else {
		m.Payload = entity.SingleItem{ProductID: strings.TrimSpace(in.ProductID), Quantity: in.Quantity}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	if kind == entity.MovementSell {
		if single, ok := m.Payload.(entity.SingleItem); ok && m.UnitPrice == nil {
			price, err := uc.listPrice(ctx, single.ProductID)
			if err != nil {
				return nil, err
			}
			m.UnitPrice = &price
		}
		if m.Total == nil {
			total := m.Amount()
			m.Total = &total
		}
	}
	return &m, nil
}

func (uc *StockUseCase) listPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil {
		return decimal.Zero, domain.NotFound("producto", productID)
	}
	return p.Price, nil
}
