package entity_test

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "debe envolver ErrInvalidInput: %v", err)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	return ve.Field
}

func TestNewMovement_VentaSimpleValida(t *testing.T) {
	m, err := entity.NewMovement(entity.Movement{
		Kind:    entity.MovementSell,
		Branch:  entity.BranchSantaRosa,
		Payload: entity.SingleItem{ProductID: "p1", Quantity: 2},
	})
	require.NoError(t, err)
	assert.False(t, m.IsMultiItem())
	assert.Equal(t, []entity.MovementLine{{ProductID: "p1", Quantity: 2}}, m.Lines())
}

func TestNewMovement_RechazaSinContenido(t *testing.T) {
	_, err := entity.NewMovement(entity.Movement{Kind: entity.MovementAdd, Branch: entity.BranchSantaRosa})
	assert.Equal(t, "product_id", fieldOf(t, err))
}

func TestNewMovement_RechazaCantidadCeroONegativa(t *testing.T) {
	for _, q := range []int{0, -3} {
		_, err := entity.NewMovement(entity.Movement{
			Kind: entity.MovementAdd, Branch: entity.BranchMacachin,
			Payload: entity.SingleItem{ProductID: "p1", Quantity: q},
		})
		assert.Equal(t, "quantity", fieldOf(t, err))
	}
}

func TestNewMovement_TrasladoRequiereDestinoDistinto(t *testing.T) {
	_, err := entity.NewMovement(entity.Movement{
		Kind: entity.MovementTransfer, Branch: entity.BranchSantaRosa, Destination: entity.BranchSantaRosa,
		Payload: entity.SingleItem{ProductID: "p1", Quantity: 1},
	})
	assert.Equal(t, "destination", fieldOf(t, err))

	_, err = entity.NewMovement(entity.Movement{
		Kind: entity.MovementTransfer, Branch: entity.BranchSantaRosa,
		Payload: entity.SingleItem{ProductID: "p1", Quantity: 1},
	})
	assert.Equal(t, "destination", fieldOf(t, err))
}

func TestNewMovement_DestinoSoloEnTraslados(t *testing.T) {
	_, err := entity.NewMovement(entity.Movement{
		Kind: entity.MovementAdd, Branch: entity.BranchSantaRosa, Destination: entity.BranchMacachin,
		Payload: entity.SingleItem{ProductID: "p1", Quantity: 1},
	})
	assert.Equal(t, "destination", fieldOf(t, err))
}

func TestNewMovement_SucursalDesconocida(t *testing.T) {
	_, err := entity.NewMovement(entity.Movement{
		Kind: entity.MovementAdd, Branch: "General Pico",
		Payload: entity.SingleItem{ProductID: "p1", Quantity: 1},
	})
	assert.Equal(t, "branch", fieldOf(t, err))
}

func TestNewMovement_VariosProductosSoloEnVentas(t *testing.T) {
	items := entity.MultiItem{Items: []entity.SaleItem{{ProductID: "p1", Quantity: 1}}}

	_, err := entity.NewMovement(entity.Movement{Kind: entity.MovementShortage, Branch: entity.BranchSantaRosa, Payload: items})
	assert.Equal(t, "items", fieldOf(t, err))

	_, err = entity.NewMovement(entity.Movement{Kind: entity.MovementSell, Branch: entity.BranchSantaRosa, Payload: entity.MultiItem{}})
	assert.Equal(t, "items", fieldOf(t, err))

	m, err := entity.NewMovement(entity.Movement{Kind: entity.MovementSell, Branch: entity.BranchSantaRosa, Payload: items})
	require.NoError(t, err)
	assert.True(t, m.IsMultiItem())
}

func TestMovement_ProductIDsYTouches(t *testing.T) {
	m := &entity.Movement{
		Kind: entity.MovementSell, Branch: entity.BranchMacachin,
		Payload: entity.MultiItem{Items: []entity.SaleItem{
			{ProductID: "p2", Quantity: 1}, {ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 3},
		}},
	}
	assert.Equal(t, []string{"p1", "p2"}, m.ProductIDs())
	assert.True(t, m.Touches("p1", entity.BranchMacachin))
	assert.False(t, m.Touches("p1", entity.BranchSantaRosa))
	assert.False(t, m.Touches("p9", entity.BranchMacachin))

	tr := &entity.Movement{
		Kind: entity.MovementTransfer, Branch: entity.BranchSantaRosa, Destination: entity.BranchMacachin,
		Payload: entity.SingleItem{ProductID: "p1", Quantity: 1},
	}
	assert.True(t, tr.Touches("p1", entity.BranchMacachin), "el destino también cuenta")
}

func TestMovement_Amount(t *testing.T) {
	price := decimal.NewFromInt(2500)
	m := &entity.Movement{Kind: entity.MovementSell, Branch: entity.BranchSantaRosa,
		Payload: entity.SingleItem{ProductID: "p1", Quantity: 3}, UnitPrice: &price}
	assert.True(t, decimal.NewFromInt(7500).Equal(m.Amount()))

	total := decimal.NewFromInt(7000)
	m.Total = &total
	assert.True(t, total.Equal(m.Amount()), "el total informado tiene prioridad")

	multi := &entity.Movement{Kind: entity.MovementSell, Branch: entity.BranchSantaRosa,
		Payload: entity.MultiItem{Items: []entity.SaleItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
			{ProductID: "p2", Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
		}}}
	assert.True(t, decimal.NewFromInt(250).Equal(multi.Amount()))
}

func TestParseMovementKind(t *testing.T) {
	k, ok := entity.ParseMovementKind(" Transfer ")
	assert.True(t, ok)
	assert.Equal(t, entity.MovementTransfer, k)

	_, ok = entity.ParseMovementKind("devolucion")
	assert.False(t, ok)
}

func TestNewMovement_RechazaCantidadFueraDeRango(t *testing.T) {
	_, err := entity.NewMovement(entity.Movement{
		Kind: entity.MovementAdd, Branch: entity.BranchSantaRosa,
		Payload: entity.SingleItem{ProductID: "p1", Quantity: entity.MaxQuantity + 1},
	})
	assert.Equal(t, "quantity", fieldOf(t, err))

	_, err = entity.NewMovement(entity.Movement{
		Kind: entity.MovementSell, Branch: entity.BranchSantaRosa,
		Payload: entity.MultiItem{Items: []entity.SaleItem{{ProductID: "p1", Quantity: math.MaxInt}}},
	})
	assert.Equal(t, "items.quantity", fieldOf(t, err))

	_, err = entity.NewMovement(entity.Movement{
		Kind: entity.MovementAdd, Branch: entity.BranchSantaRosa,
		Payload: entity.SingleItem{ProductID: "p1", Quantity: entity.MaxQuantity},
	})
	assert.NoError(t, err)
}
