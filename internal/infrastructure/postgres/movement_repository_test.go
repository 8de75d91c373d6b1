package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

func TestMovementListQuery_SinFiltros(t *testing.T) {
	query, args := movementListQuery(entity.MovementFilter{})
	assert.NotContains(t, query, "WHERE")
	assert.NotContains(t, query, "LIMIT")
	assert.Contains(t, query, "ORDER BY m.date DESC, m.seq DESC")
	assert.Empty(t, args)
}

func TestMovementListQuery_NumeraParametrosEnOrden(t *testing.T) {
	from := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	obs := true
	query, args := movementListQuery(entity.MovementFilter{
		From:            &from,
		Kind:            entity.MovementSell,
		Branch:          entity.BranchMacachin,
		HasObservations: &obs,
		ProductID:       "p1",
		Limit:           20,
		Offset:          40,
	})

	assert.Contains(t, query, "m.date >= $1")
	assert.Contains(t, query, "m.kind = $2")
	assert.Contains(t, query, "(m.branch = $3 OR m.destination = $3)")
	assert.Contains(t, query, "btrim(m.observations) <> ''")
	assert.Contains(t, query, "i.product_id = $4")
	assert.Contains(t, query, "LIMIT $5 OFFSET $6")
	assert.Equal(t, []any{from, "sell", entity.BranchMacachin, "p1", 20, 40}, args)
}

func TestMovementListQuery_SinObservaciones(t *testing.T) {
	obs := false
	query, args := movementListQuery(entity.MovementFilter{HasObservations: &obs, SellerID: "s1"})
	assert.Contains(t, query, "m.seller_id = $1")
	assert.Contains(t, query, "btrim(m.observations) = ''")
	assert.Equal(t, []any{"s1"}, args)
}
