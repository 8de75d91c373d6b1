package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aromas-stock/internal/application/inventory"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/memory"
)

var day = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, s *memory.Store, id string) {
	t.Helper()
	p := entity.NewProduct(id, "Vela "+id, decimal.NewFromInt(1500), "", day)
	require.NoError(t, s.Products().Create(context.Background(), p))
}

func add(id, productID string, qty int, date time.Time) *entity.Movement {
	return &entity.Movement{
		ID: id, Kind: entity.MovementAdd, Branch: entity.BranchSantaRosa, Date: date,
		Payload: entity.SingleItem{ProductID: productID, Quantity: qty},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRun_ErrorDeshaceMovimientosYSaldos(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedProduct(t, s, "p1")

	boom := errors.New("boom")
	err := s.TxRunner().Run(ctx, func(tx inventory.Tx) error {
		require.NoError(t, tx.Movements().Append(ctx, add("m1", "p1", 5, day)))
		p, _ := tx.Products().GetForUpdate(ctx, "p1")
		p.Stock, p.StockByBranch[entity.BranchSantaRosa] = 5, 5
		require.NoError(t, tx.Products().UpdateStock(ctx, p))
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, _ := s.Movements().ListAll(ctx)
	assert.Empty(t, all)
	got, _ := s.Movements().GetByID(ctx, "m1")
	assert.Nil(t, got)
	p, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, 0, p.Stock)
}

func TestSavepoint_FallaConservaElMovimiento(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedProduct(t, s, "p1")

	err := s.TxRunner().Run(ctx, func(tx inventory.Tx) error {
		require.NoError(t, tx.Movements().Append(ctx, add("m1", "p1", 5, day)))
		spErr := tx.Savepoint(ctx, func(products repository.ProductRepository) error {
			p, _ := products.GetForUpdate(ctx, "p1")
			p.Stock = 5
			require.NoError(t, products.UpdateStock(ctx, p))
			return errors.New("proyección")
		})
		assert.Error(t, spErr)
		return nil
	})
	require.NoError(t, err)

	m, _ := s.Movements().GetByID(ctx, "m1")
	require.NotNil(t, m)
	p, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, 0, p.Stock, "el savepoint deshace el saldo")
}

func TestSetStockFault_UpdateStockDevuelveErrorDePersistencia(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedProduct(t, s, "p1")
	s.SetStockFault(func(id string) error {
		if id == "p1" {
			return errors.New("disco lleno")
		}
		return nil
	})

	p, _ := s.Products().GetByID(ctx, "p1")
	err := s.Products().UpdateStock(ctx, p)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_NoTocaElStock(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedProduct(t, s, "p1")

	p, _ := s.Products().GetByID(ctx, "p1")
	p.Stock, p.StockByBranch[entity.BranchMacachin] = 3, 3
	require.NoError(t, s.Products().UpdateStock(ctx, p))

	p.Name = "Difusor"
	p.Stock = 99
	require.NoError(t, s.Products().Update(ctx, p))

	got, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, "Difusor", got.Name)
	assert.Equal(t, 3, got.Stock)
	assert.Equal(t, 3, got.StockByBranch[entity.BranchMacachin])
}

func TestGetByID_DevuelveCopia(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedProduct(t, s, "p1")

	p, _ := s.Products().GetByID(ctx, "p1")
	p.StockByBranch[entity.BranchSantaRosa] = 50

	again, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, 0, again.StockByBranch[entity.BranchSantaRosa])
}

func TestCreate_Duplicado(t *testing.T) {
	s := memory.New()
	seedProduct(t, s, "p1")
	err := s.Products().Create(context.Background(), entity.NewProduct("p1", "otra", decimal.Zero, "", day))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro
// ──────────────────────────────────────────────────────────────────────────────

func TestAppend_AsignaID(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	m := add("", "p1", 1, day)
	require.NoError(t, s.Movements().Append(ctx, m))
	assert.NotEmpty(t, m.ID)
}

func TestList_MasRecientePrimeroConPaginacion(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Movements().Append(ctx, add(id, "p1", 1, day.Add(time.Duration(i)*time.Hour))))
	}

	list, err := s.Movements().List(ctx, entity.MovementFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	all, _ := s.Movements().List(ctx, entity.MovementFilter{})
	assert.Len(t, all, 4)
}

func TestListByProductAndBranch_IncluyeDestinoDeTraslados(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Movements().Append(ctx, add("a", "p1", 5, day)))
	require.NoError(t, s.Movements().Append(ctx, &entity.Movement{
		ID: "t", Kind: entity.MovementTransfer, Branch: entity.BranchSantaRosa, Destination: entity.BranchMacachin,
		Date: day, Payload: entity.SingleItem{ProductID: "p1", Quantity: 2},
	}))

	mac, _ := s.Movements().ListByProductAndBranch(ctx, "p1", entity.BranchMacachin)
	require.Len(t, mac, 1)
	assert.Equal(t, "t", mac[0].ID)

	sr, _ := s.Movements().ListByProductAndBranch(ctx, "p1", entity.BranchSantaRosa)
	assert.Len(t, sr, 2)
}

func TestUpdateNotes_SoloObservaciones(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Movements().Append(ctx, add("a", "p1", 5, day)))

	require.NoError(t, s.Movements().UpdateNotes(ctx, "a", "caja dañada"))
	m, _ := s.Movements().GetByID(ctx, "a")
	assert.Equal(t, "caja dañada", m.Observations)
	assert.Equal(t, 5, m.Lines()[0].Quantity)

	assert.ErrorIs(t, s.Movements().UpdateNotes(ctx, "nope", "x"), domain.ErrNotFound)
}

func TestCountByProduct_CuentaVentasMultiples(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Movements().Append(ctx, add("a", "p1", 5, day)))
	require.NoError(t, s.Movements().Append(ctx, &entity.Movement{
		ID: "v", Kind: entity.MovementSell, Branch: entity.BranchSantaRosa, Date: day,
		Payload: entity.MultiItem{Items: []entity.SaleItem{{ProductID: "p2", Quantity: 1}, {ProductID: "p1", Quantity: 1}}},
	}))

	n, err := s.Movements().CountByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
