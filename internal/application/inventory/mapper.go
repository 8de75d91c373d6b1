package inventory

import (
	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

func toProductStock(p *entity.Product) dto.ProductStockResponse {
	byBranch := entity.EmptyBranchStock()
	for b, q := range p.StockByBranch {
		byBranch[b] = q
	}
	return dto.ProductStockResponse{
		ID:            p.ID,
		Name:          p.Name,
		CategoryID:    p.CategoryID,
		Price:         p.Price,
		Stock:         p.Stock,
		StockByBranch: byBranch,
	}
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	out := dto.MovementResponse{
		ID:            m.ID,
		Type:          string(m.Kind),
		Branch:        m.Branch,
		Destination:   m.Destination,
		Date:          m.Date,
		Price:         m.UnitPrice,
		Total:         m.Total,
		SellerID:      m.SellerID,
		FinalConsumer: m.FinalConsumer,
		Observations:  m.Observations,
		CreatedAt:     m.CreatedAt,
	}
	switch p := m.Payload.(type) {
	case entity.SingleItem:
		out.ProductID = p.ProductID
		out.Quantity = p.Quantity
	case entity.MultiItem:
		out.Items = make([]dto.MovementItemResponse, 0, len(p.Items))
		for _, it := range p.Items {
			out.Items = append(out.Items, dto.MovementItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.UnitPrice})
		}
	}
	return out
}

func toOperationResponse(m *entity.Movement, balances []*entity.Product) *dto.StockOperationResponse {
	out := &dto.StockOperationResponse{Movement: toMovementResponse(m)}
	if m.IsMultiItem() {
		out.Products = make([]dto.ProductStockResponse, 0, len(balances))
		for _, p := range balances {
			out.Products = append(out.Products, toProductStock(p))
		}
		return out
	}
	if len(balances) > 0 {
		ps := toProductStock(balances[0])
		out.Product = &ps
	}
	return out
}
