package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/aromas-stock/internal/application/analytics"
	"github.com/jhoicas/aromas-stock/internal/application/auth"
	"github.com/jhoicas/aromas-stock/internal/application/inventory"
	"github.com/jhoicas/aromas-stock/internal/application/usecase"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Stock         *inventory.StockUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Documents     *inventory.DocumentsUseCase
	ProductUC     *usecase.ProductUseCase
	CategoryUC    *usecase.CategoryUseCase
	SellerUC      *usecase.SellerUseCase
	UserUC        *usecase.UserUseCase
	AuthUC        *auth.AuthUseCase
	StatsUC       *analytics.StatsUseCase
	JWTSecret     string
	AllowedOrigin string
	Logger        zerolog.Logger

	// Opcionales: sin HTTPMetrics no se miden peticiones; sin Gatherer no se expone /metrics.
	HTTPMetrics HTTPObserver
	Gatherer    prometheus.Gatherer
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Logger))
	if deps.HTTPMetrics != nil {
		app.Use(MetricsMiddleware(deps.HTTPMetrics))
	}
	if deps.AllowedOrigin != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: deps.AllowedOrigin,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	staff := RequireRole(entity.RoleAdmin, entity.RoleVendedor)

	// Stock: libro de movimientos y saldos
	stockHandler := NewStockHandler(deps.Stock, deps.Replenishment, deps.Documents)
	stock := protected.Group("/stock", staff)
	stock.Post("/add", stockHandler.Add)
	stock.Post("/sell", stockHandler.Sell)
	stock.Post("/transfer", stockHandler.Transfer)
	stock.Post("/shortage", stockHandler.Shortage)
	stock.Get("/inventory", stockHandler.Inventory)
	stock.Get("/replenishment", stockHandler.Replenishment)
	stock.Get("/movements", stockHandler.Movements)
	stock.Get("/movements/export", stockHandler.Export)
	stock.Get("/movements/:id", stockHandler.Movement)
	stock.Patch("/movements/:id", stockHandler.UpdateNotes)
	stock.Get("/movements/:id/receipt", stockHandler.Receipt)
	stock.Post("/rebuild", adminOnly, stockHandler.Rebuild)

	protected.Get("/branches", staff, stockHandler.Branches)

	// Catálogo: lectura para el personal, escritura sólo admin
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products", staff)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := protected.Group("/categories", staff)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", adminOnly, categoryHandler.Create)
	categories.Put("/:id", adminOnly, categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	sellerHandler := NewSellerHandler(deps.SellerUC)
	sellers := protected.Group("/sellers", staff)
	sellers.Get("/", sellerHandler.List)
	sellers.Get("/:id", sellerHandler.GetByID)
	sellers.Post("/", adminOnly, sellerHandler.Create)
	sellers.Put("/:id", adminOnly, sellerHandler.Update)

	userHandler := NewUserHandler(deps.UserUC)
	protected.Get("/users/me", staff, userHandler.Me)
	protected.Post("/users", adminOnly, userHandler.Create)

	statsHandler := NewStatsHandler(deps.StatsUC)
	protected.Get("/stats/summary", staff, statsHandler.Summary)
}
