package stock_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/domain/stock"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

const (
	sr  = entity.BranchSantaRosa
	mac = entity.BranchMacachin
)

func single(id string, kind entity.MovementKind, productID string, qty int, branch, dest string) *entity.Movement {
	return &entity.Movement{
		ID:          id,
		Kind:        kind,
		Branch:      branch,
		Destination: dest,
		Payload:     entity.SingleItem{ProductID: productID, Quantity: qty},
	}
}

func product(id string) *entity.Product {
	p := entity.NewProduct(id, "Vela "+id, decimal.NewFromInt(1500), "", testNow)
	return p
}

// historia de ejemplo: cargas, ventas, traslados, faltantes y una venta múltiple.
func sampleLedger() []*entity.Movement {
	return []*entity.Movement{
		single("m1", entity.MovementAdd, "p1", 10, sr, ""),
		single("m2", entity.MovementAdd, "p2", 5, mac, ""),
		single("m3", entity.MovementSell, "p1", 3, sr, ""),
		single("m4", entity.MovementTransfer, "p1", 4, sr, mac),
		single("m5", entity.MovementShortage, "p2", 1, mac, ""),
		{
			ID: "m6", Kind: entity.MovementSell, Branch: mac,
			Payload: entity.MultiItem{Items: []entity.SaleItem{
				{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
				{ProductID: "p2", Quantity: 2, UnitPrice: decimal.NewFromInt(900)},
			}},
		},
		single("m7", entity.MovementAdd, "p2", 7, sr, ""),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Deltas
// ──────────────────────────────────────────────────────────────────────────────

func TestDeltas_PorTipo(t *testing.T) {
	assert.Equal(t, []stock.Delta{{ProductID: "p1", Branch: sr, Quantity: 10}},
		stock.Deltas(single("a", entity.MovementAdd, "p1", 10, sr, "")))
	assert.Equal(t, []stock.Delta{{ProductID: "p1", Branch: sr, Quantity: -3}},
		stock.Deltas(single("s", entity.MovementSell, "p1", 3, sr, "")))
	assert.Equal(t, []stock.Delta{{ProductID: "p1", Branch: mac, Quantity: -1}},
		stock.Deltas(single("f", entity.MovementShortage, "p1", 1, mac, "")))
	assert.Equal(t, []stock.Delta{
		{ProductID: "p1", Branch: sr, Quantity: -4},
		{ProductID: "p1", Branch: mac, Quantity: 4},
	}, stock.Deltas(single("t", entity.MovementTransfer, "p1", 4, sr, mac)))
}

func TestAvailability_SumaSoloElParProductoSucursal(t *testing.T) {
	ledger := sampleLedger()
	// p1 en Santa Rosa: +10 −3 −4
	assert.Equal(t, 3, stock.Availability(ledger, "p1", sr))
	// p1 en Macachín: +4 (traslado) −2 (venta múltiple)
	assert.Equal(t, 2, stock.Availability(ledger, "p1", mac))
	// p2 en Macachín: +5 −1 −2
	assert.Equal(t, 2, stock.Availability(ledger, "p2", mac))
	assert.Equal(t, 0, stock.Availability(nil, "p1", sr))
}

// ──────────────────────────────────────────────────────────────────────────────
// Apply (incremental)
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_TrasladoConservaStockGlobal(t *testing.T) {
	p := product("p1")
	stock.Apply(p, single("a", entity.MovementAdd, "p1", 10, sr, ""))
	stock.Apply(p, single("t", entity.MovementTransfer, "p1", 4, sr, mac))

	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, 6, p.StockByBranch[sr])
	assert.Equal(t, 4, p.StockByBranch[mac])
	require.NoError(t, stock.CheckInvariants(p))
}

func TestApply_IgnoraLineasDeOtrosProductos(t *testing.T) {
	p := product("p1")
	stock.Apply(p, single("a", entity.MovementAdd, "p2", 10, sr, ""))
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 0, p.StockByBranch[sr])
}

func TestApply_CargaYVentaVuelvenAlValorInicial(t *testing.T) {
	p := product("p1")
	stock.Apply(p, single("a0", entity.MovementAdd, "p1", 2, mac, ""))
	before := p.Clone()

	stock.Apply(p, single("a", entity.MovementAdd, "p1", 7, mac, ""))
	stock.Apply(p, single("s", entity.MovementSell, "p1", 7, mac, ""))

	assert.Equal(t, before.StockByBranch, p.StockByBranch)
	assert.Equal(t, before.Stock, p.Stock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Replay (reconstrucción)
// ──────────────────────────────────────────────────────────────────────────────

func TestReplay_CoincideConIncremental(t *testing.T) {
	ledger := sampleLedger()
	p1, p2 := product("p1"), product("p2")
	for _, m := range ledger {
		stock.Apply(p1, m)
		stock.Apply(p2, m)
	}

	res := stock.Replay([]*entity.Product{product("p1"), product("p2")}, ledger)

	require.Len(t, res.Products, 2)
	assert.Equal(t, p1.StockByBranch, res.Products["p1"].StockByBranch)
	assert.Equal(t, p1.Stock, res.Products["p1"].Stock)
	assert.Equal(t, p2.StockByBranch, res.Products["p2"].StockByBranch)
	assert.Equal(t, p2.Stock, res.Products["p2"].Stock)
	assert.Equal(t, len(ledger), res.MovementsReplayed)
	for _, p := range res.Products {
		require.NoError(t, stock.CheckInvariants(p))
	}
}

func TestReplay_IndependienteDelOrden(t *testing.T) {
	ledger := sampleLedger()
	base := stock.Replay([]*entity.Product{product("p1"), product("p2")}, ledger)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]*entity.Movement(nil), ledger...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := stock.Replay([]*entity.Product{product("p1"), product("p2")}, shuffled)
		for id, p := range base.Products {
			assert.Equal(t, p.StockByBranch, got.Products[id].StockByBranch, "permutación %d", i)
			assert.Equal(t, p.Stock, got.Products[id].Stock, "permutación %d", i)
		}
	}
}

func TestReplay_Idempotente(t *testing.T) {
	ledger := sampleLedger()
	first := stock.Replay([]*entity.Product{product("p1"), product("p2")}, ledger)

	again := make([]*entity.Product, 0, len(first.Products))
	for _, p := range first.Products {
		again = append(again, p)
	}
	second := stock.Replay(again, ledger)

	for id, p := range first.Products {
		assert.Equal(t, p.StockByBranch, second.Products[id].StockByBranch)
		assert.Equal(t, p.Stock, second.Products[id].Stock)
	}
}

func TestReplay_DescartaSaldosPreviosYNoModificaEntrada(t *testing.T) {
	drifted := product("p1")
	drifted.Stock = 99
	drifted.StockByBranch[sr] = 99

	res := stock.Replay([]*entity.Product{drifted}, []*entity.Movement{
		single("m1", entity.MovementAdd, "p1", 3, sr, ""),
	})

	assert.Equal(t, 3, res.Products["p1"].Stock)
	assert.Equal(t, 99, drifted.Stock, "la entrada no debe mutarse")
}

func TestReplay_ReportaLineasHuerfanas(t *testing.T) {
	res := stock.Replay([]*entity.Product{product("p1")}, []*entity.Movement{
		single("m1", entity.MovementAdd, "p1", 3, sr, ""),
		single("m2", entity.MovementAdd, "borrado", 5, sr, ""),
	})

	require.Len(t, res.Orphans, 1)
	assert.Equal(t, stock.Orphan{MovementID: "m2", ProductID: "borrado"}, res.Orphans[0])
	assert.Equal(t, 3, res.Products["p1"].Stock)
}

func TestCheckInvariants_DetectaInconsistencias(t *testing.T) {
	p := product("p1")
	p.Stock = 1
	assert.Error(t, stock.CheckInvariants(p))

	p = product("p1")
	p.StockByBranch[sr] = -1
	p.Stock = -1
	assert.Error(t, stock.CheckInvariants(p))
}

func TestCheckInvariants_SaldoFueraDeRango(t *testing.T) {
	p := product("p1")
	p.StockByBranch[sr] = entity.MaxQuantity + 1
	p.Stock = entity.MaxQuantity + 1
	assert.Error(t, stock.CheckInvariants(p))
}

func TestFits_LimiteDeSaldo(t *testing.T) {
	p := product("p1")
	p.StockByBranch[sr] = entity.MaxQuantity - 5
	p.StockByBranch[mac] = 3
	p.Stock = entity.MaxQuantity - 2

	assert.True(t, stock.Fits(p, single("m1", entity.MovementAdd, "p1", 2, sr, "")))
	assert.False(t, stock.Fits(p, single("m2", entity.MovementAdd, "p1", 3, sr, "")), "el total global se pasa")
	assert.True(t, stock.Fits(p, single("m3", entity.MovementTransfer, "p1", 3, mac, sr)), "un traslado no cambia el total")
	assert.True(t, stock.Fits(p, single("m4", entity.MovementSell, "p1", 1, sr, "")))
	assert.True(t, stock.Fits(p, single("m5", entity.MovementAdd, "otro", entity.MaxQuantity, sr, "")))
}
