package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aromas-stock/internal/application/analytics"
	"github.com/jhoicas/aromas-stock/internal/application/auth"
	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/application/inventory"
	"github.com/jhoicas/aromas-stock/internal/application/usecase"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/excel"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/memory"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/metrics"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/aromas-stock/internal/interfaces/http"
	"github.com/jhoicas/aromas-stock/pkg/civildate"
	pkgjwt "github.com/jhoicas/aromas-stock/pkg/jwt"
)

type apiFixture struct {
	app    *fiber.App
	store  *memory.Store
	users  *usecase.UserUseCase
	reg    *prometheus.Registry
	admin  string
	seller string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	cal := civildate.Default()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	stockUC := inventory.NewStockUseCase(store.TxRunner(), store.Products(), store.Movements(), store.Sellers(),
		inventory.WithCalendar(cal), inventory.WithMetrics(m))
	users := usecase.NewUserUseCase(store.Users())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Stock:         stockUC,
		Replenishment: inventory.NewReplenishmentUseCase(store.Products(), store.Movements(), cal),
		Documents: inventory.NewDocumentsUseCase(store.Movements(), store.Products(), store.Sellers(),
			pdf.NewMarotoReceiptGenerator(), excel.NewSpreadsheetExporter(), cal, "Aromas", ""),
		ProductUC:  usecase.NewProductUseCase(store.Products(), store.Categories(), store.Movements(), nil),
		CategoryUC: usecase.NewCategoryUseCase(store.Categories(), store.Products()),
		SellerUC:   usecase.NewSellerUseCase(store.Sellers()),
		UserUC:     users,
		AuthUC: auth.NewAuthUseCase(store.Users(), auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		StatsUC:     analytics.NewStatsUseCase(store.Movements(), store.Products(), store.Sellers(), nil, 0, cal, zerolog.Nop()),
		JWTSecret:   testJWTSecret,
		Logger:      zerolog.Nop(),
		HTTPMetrics: m,
		Gatherer:    reg,
	})

	admin, err := pkgjwt.Generate(testJWTSecret, "u-admin", entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)
	seller, err := pkgjwt.Generate(testJWTSecret, "u-vend", entity.RoleVendedor, testIssuer, testExpMin)
	require.NoError(t, err)

	return &apiFixture{app: app, store: store, users: users, reg: reg, admin: admin, seller: seller}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (f *apiFixture) createProduct(t *testing.T, name string, price int64) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/products", f.admin, dto.CreateProductRequest{
		Name: name, Price: decimal.NewFromInt(price),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))
	return p.ID
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

func TestRouter_Health(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")
}

func TestRouter_ProductoSoloAdminPuedeCrear(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodPost, "/api/products", f.seller, dto.CreateProductRequest{Name: "Sahumerio"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, body).Code)

	id := f.createProduct(t, "Sahumerio", 800)
	resp, body = f.do(t, http.MethodGet, "/api/products/"+id, f.seller, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 0, p.StockByBranch[entity.BranchMacachin])
}

func TestRouter_SinToken_Retorna401(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.do(t, http.MethodGet, "/api/stock/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_CargaYVenta(t *testing.T) {
	f := newAPI(t)
	id := f.createProduct(t, "Vela de soja", 1500)

	resp, body := f.do(t, http.MethodPost, "/api/stock/add", f.seller, dto.StockMovementRequest{
		ProductID: id, Quantity: 5, Branch: entity.BranchSantaRosa,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = f.do(t, http.MethodPost, "/api/stock/sell", f.seller, dto.StockMovementRequest{
		ProductID: id, Quantity: 2, Branch: entity.BranchSantaRosa,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out dto.StockOperationResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Product)
	assert.Equal(t, 3, out.Product.Stock)
	assert.Equal(t, 3, out.Product.StockByBranch[entity.BranchSantaRosa])
	assert.Equal(t, "sell", out.Movement.Type)
}

func TestRouter_VentaSinStock_Retorna409(t *testing.T) {
	f := newAPI(t)
	id := f.createProduct(t, "Difusor", 4000)
	f.do(t, http.MethodPost, "/api/stock/add", f.admin, dto.StockMovementRequest{
		ProductID: id, Quantity: 1, Branch: entity.BranchMacachin,
	})

	resp, body := f.do(t, http.MethodPost, "/api/stock/sell", f.seller, dto.StockMovementRequest{
		ProductID: id, Quantity: 1, Branch: entity.BranchSantaRosa,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	e := decodeError(t, body)
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	assert.True(t, strings.HasPrefix(e.Message, "Stock insuficiente"), e.Message)
	assert.Contains(t, e.Message, entity.BranchSantaRosa)
}

func TestRouter_VentaMultipleYTraslado(t *testing.T) {
	f := newAPI(t)
	p1 := f.createProduct(t, "Aceite lavanda", 2500)
	p2 := f.createProduct(t, "Hornillo", 3000)
	for _, id := range []string{p1, p2} {
		resp, body := f.do(t, http.MethodPost, "/api/stock/add", f.admin, dto.StockMovementRequest{
			ProductID: id, Quantity: 4, Branch: entity.BranchSantaRosa,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	resp, body := f.do(t, http.MethodPost, "/api/stock/transfer", f.seller, dto.StockMovementRequest{
		ProductID: p1, Quantity: 3, Branch: entity.BranchSantaRosa, Destination: entity.BranchMacachin,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = f.do(t, http.MethodPost, "/api/stock/sell", f.seller, dto.StockMovementRequest{
		Branch: entity.BranchMacachin,
		Items:  []dto.SaleItemRequest{{ProductID: p1, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out dto.StockOperationResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Products, 1)
	assert.Equal(t, 1, out.Products[0].StockByBranch[entity.BranchMacachin])
	assert.Len(t, out.Movement.Items, 1)

	resp, body = f.do(t, http.MethodGet, "/api/stock/inventory", f.seller, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inv []dto.ProductStockResponse
	require.NoError(t, json.Unmarshal(body, &inv))
	byID := map[string]dto.ProductStockResponse{}
	for _, p := range inv {
		byID[p.ID] = p
	}
	assert.Equal(t, 2, byID[p1].Stock)
	assert.Equal(t, 1, byID[p1].StockByBranch[entity.BranchSantaRosa])
	assert.Equal(t, 4, byID[p2].StockByBranch[entity.BranchSantaRosa])
}

func TestRouter_SucursalDesconocida_Retorna400(t *testing.T) {
	f := newAPI(t)
	id := f.createProduct(t, "Vela", 1000)
	resp, body := f.do(t, http.MethodPost, "/api/stock/add", f.seller, dto.StockMovementRequest{
		ProductID: id, Quantity: 1, Branch: "Toay",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, body).Code)
}

func TestRouter_MovimientoInexistente_Retorna404(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodGet, "/api/stock/movements/no-existe", f.seller, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, body).Code)
}

func TestRouter_HistorialFiltradoYObservaciones(t *testing.T) {
	f := newAPI(t)
	id := f.createProduct(t, "Sahumerio", 800)
	f.do(t, http.MethodPost, "/api/stock/add", f.admin, dto.StockMovementRequest{ProductID: id, Quantity: 10, Branch: entity.BranchSantaRosa})
	_, body := f.do(t, http.MethodPost, "/api/stock/shortage", f.seller, dto.StockMovementRequest{
		ProductID: id, Quantity: 1, Branch: entity.BranchSantaRosa, Observations: "roto",
	})
	var op dto.StockOperationResponse
	require.NoError(t, json.Unmarshal(body, &op))

	resp, body := f.do(t, http.MethodGet, "/api/stock/movements?kind=shortage", f.seller, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var list dto.MovementListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, op.Movement.ID, list.Items[0].ID)

	resp, body = f.do(t, http.MethodPatch, "/api/stock/movements/"+op.Movement.ID, f.seller,
		dto.UpdateMovementNotesRequest{Observations: "roto en traslado"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, "roto en traslado", m.Observations)
	assert.Equal(t, 1, m.Quantity)
}

func TestRouter_ComprobanteYExportacion(t *testing.T) {
	f := newAPI(t)
	id := f.createProduct(t, "Vela", 1000)
	f.do(t, http.MethodPost, "/api/stock/add", f.admin, dto.StockMovementRequest{ProductID: id, Quantity: 2, Branch: entity.BranchMacachin})
	_, body := f.do(t, http.MethodPost, "/api/stock/sell", f.seller, dto.StockMovementRequest{
		ProductID: id, Quantity: 1, Branch: entity.BranchMacachin,
	})
	var op dto.StockOperationResponse
	require.NoError(t, json.Unmarshal(body, &op))

	resp, body := f.do(t, http.MethodGet, "/api/stock/movements/"+op.Movement.ID+"/receipt", f.seller, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = f.do(t, http.MethodGet, "/api/stock/movements/export?branch=macachin", f.seller, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/vnd.ms-excel", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xls")
	assert.Contains(t, string(body), "Workbook")
}

func TestRouter_RebuildSoloAdmin(t *testing.T) {
	f := newAPI(t)
	id := f.createProduct(t, "Vela", 1000)
	f.do(t, http.MethodPost, "/api/stock/add", f.admin, dto.StockMovementRequest{ProductID: id, Quantity: 3, Branch: entity.BranchSantaRosa})

	resp, _ := f.do(t, http.MethodPost, "/api/stock/rebuild", f.seller, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/stock/rebuild", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.RebuildResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.ProductsUpdated)
	assert.Equal(t, 1, out.MovementsReplayed)
	assert.Equal(t, 0, out.ProductsFailed)
}

func TestRouter_Login(t *testing.T) {
	f := newAPI(t)
	_, err := f.users.Create(context.Background(), dto.CreateUserRequest{
		Email: "ana@aromas.test", Password: "clave-segura", Name: "Ana", Role: entity.RoleVendedor,
	})
	require.NoError(t, err)

	resp, body := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ANA@aromas.test", Password: "clave-segura"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)

	resp, body = f.do(t, http.MethodGet, "/api/users/me", out.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "ana@aromas.test")

	resp, _ = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@aromas.test", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_EstadisticasYSucursales(t *testing.T) {
	f := newAPI(t)
	id := f.createProduct(t, "Vela", 1000)
	f.do(t, http.MethodPost, "/api/stock/add", f.admin, dto.StockMovementRequest{ProductID: id, Quantity: 3, Branch: entity.BranchSantaRosa})
	f.do(t, http.MethodPost, "/api/stock/sell", f.seller, dto.StockMovementRequest{ProductID: id, Quantity: 2, Branch: entity.BranchSantaRosa})

	resp, body := f.do(t, http.MethodGet, "/api/stats/summary", f.seller, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var stats dto.StatsSummaryResponse
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.SalesCount)
	assert.True(t, stats.Revenue.Equal(decimal.NewFromInt(2000)), stats.Revenue.String())

	resp, body = f.do(t, http.MethodGet, "/api/branches", f.seller, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var branches []dto.BranchResponse
	require.NoError(t, json.Unmarshal(body, &branches))
	require.Len(t, branches, len(entity.Branches))
	assert.Equal(t, entity.BranchSantaRosa, branches[0].Name)
	assert.Equal(t, 1, branches[0].TotalUnits)
}

func TestRouter_MetricasExpuestas(t *testing.T) {
	f := newAPI(t)
	f.do(t, http.MethodGet, "/health", "", nil)

	resp, body := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/health",status="2xx"}`)
}
