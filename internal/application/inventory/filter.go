package inventory

import (
	"strconv"
	"strings"

	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/pkg/civildate"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// ParseMovementFilter convierte los query params del historial en un filtro del libro.
// from/to son días inclusive en hora local; el filtro resultante usa [from, to+1día).
func ParseMovementFilter(cal civildate.Calendar, req dto.MovementListRequest) (entity.MovementFilter, error) {
	var f entity.MovementFilter

	from, to, err := cal.Range(req.From, req.To)
	if err != nil {
		return f, domain.Invalid("from", err.Error())
	}
	f.From, f.To = from, to

	if strings.TrimSpace(req.Type) != "" {
		kind, ok := entity.ParseMovementKind(req.Type)
		if !ok {
			return f, domain.Invalid("type", "tipo de movimiento desconocido")
		}
		f.Kind = kind
	}
	if strings.TrimSpace(req.Branch) != "" {
		b, ok := entity.NormalizeBranch(req.Branch)
		if !ok {
			return f, domain.Invalid("branch", "sucursal desconocida")
		}
		f.Branch = b
	}
	if v := strings.TrimSpace(req.HasObservations); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, domain.Invalid("has_observations", "se espera true o false")
		}
		f.HasObservations = &b
	}
	f.ProductID = strings.TrimSpace(req.ProductID)
	f.SellerID = strings.TrimSpace(req.SellerID)

	f.Limit, f.Offset = req.Limit, req.Offset
	if f.Limit <= 0 {
		f.Limit = defaultMovementLimit
	}
	if f.Limit > maxMovementLimit {
		f.Limit = maxMovementLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}
