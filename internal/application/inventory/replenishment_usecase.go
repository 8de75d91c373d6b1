package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
	"github.com/jhoicas/aromas-stock/pkg/civildate"
)

// DefaultReplenishmentThreshold unidades por sucursal a partir de las cuales un producto se considera bajo.
const DefaultReplenishmentThreshold = 3

// ReplenishmentUseCase genera la lista de reposición por sucursal.
// Combina los saldos materializados con las ventas de los últimos 30 días para priorizar.
type ReplenishmentUseCase struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	cal       civildate.Calendar
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	products repository.ProductRepository,
	movements repository.MovementRepository,
	cal civildate.Calendar,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{products: products, movements: movements, cal: cal}
}

// GenerateReplenishmentList devuelve los productos con stock <= threshold en la sucursal (o en todas
// si branch está vacío). Si la otra sucursal tiene excedente se sugiere un traslado; si no, una carga.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, branch string, threshold int) ([]dto.ReplenishmentSuggestionDTO, error) {
	branches := entity.Branches
	if branch != "" {
		b, ok := entity.NormalizeBranch(branch)
		if !ok {
			return nil, domain.Invalid("branch", "sucursal desconocida")
		}
		branches = []string{b}
	}
	if threshold < 0 {
		return nil, domain.Invalid("threshold", "no puede ser negativo")
	}

	products, err := uc.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	// Ventas de los últimos 30 días por producto y sucursal
	since := uc.cal.Now().AddDate(0, 0, -30)
	sales, err := uc.movements.List(ctx, entity.MovementFilter{From: &since, Kind: entity.MovementSell})
	if err != nil {
		return nil, err
	}
	sold := make(map[string]map[string]int)
	for _, m := range sales {
		for _, l := range m.Lines() {
			if sold[l.ProductID] == nil {
				sold[l.ProductID] = make(map[string]int)
			}
			sold[l.ProductID][m.Branch] += l.Quantity
		}
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, p := range products {
		for _, b := range branches {
			current := p.BranchStock(b)
			if current > threshold {
				continue
			}
			units := sold[p.ID][b]
			ideal := threshold * 2
			if units > ideal {
				ideal = units
			}
			need := ideal - current
			if need <= 0 {
				need = 1
			}
			s := dto.ReplenishmentSuggestionDTO{
				ProductID:       p.ID,
				ProductName:     p.Name,
				Branch:          b,
				CurrentStock:    current,
				Threshold:       threshold,
				UnitsSold30Days: units,
				SuggestedQty:    need,
				Action:          string(entity.MovementAdd),
			}
			if source, surplus := bestSource(p, b, threshold); surplus > 0 {
				s.Action = string(entity.MovementTransfer)
				s.SourceBranch = source
				if surplus < need {
					s.SuggestedQty = surplus
				}
			}
			suggestions = append(suggestions, s)
		}
	}

	// Sin stock primero; a igual stock, el que más se vende
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].CurrentStock != suggestions[j].CurrentStock {
			return suggestions[i].CurrentStock < suggestions[j].CurrentStock
		}
		return suggestions[i].UnitsSold30Days > suggestions[j].UnitsSold30Days
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// bestSource sucursal con mayor excedente sobre el umbral, distinta de target.
func bestSource(p *entity.Product, target string, threshold int) (string, int) {
	var source string
	best := 0
	for _, b := range entity.Branches {
		if b == target {
			continue
		}
		if surplus := p.BranchStock(b) - threshold; surplus > best {
			source, best = b, surplus
		}
	}
	return source, best
}
