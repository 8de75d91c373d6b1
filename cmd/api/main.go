// @title                       Aromas Stock API
// @version                     1.0
// @description                 Stock por sucursal, ventas y traslados de un local de aromaterapia.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/jhoicas/aromas-stock/docs"
	"github.com/jhoicas/aromas-stock/internal/application/analytics"
	"github.com/jhoicas/aromas-stock/internal/application/auth"
	"github.com/jhoicas/aromas-stock/internal/application/inventory"
	"github.com/jhoicas/aromas-stock/internal/application/ports"
	"github.com/jhoicas/aromas-stock/internal/application/usecase"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/cache"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/events"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/excel"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/metrics"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/aromas-stock/internal/interfaces/http"
	"github.com/jhoicas/aromas-stock/pkg/civildate"
	"github.com/jhoicas/aromas-stock/pkg/config"
	"github.com/jhoicas/aromas-stock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := storage.Open(ctx, *cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.Close()

	cal := civildate.New(cfg.Business.UTCOffsetHours)
	ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second

	// Caché de lecturas: sin Redis (o si no responde) se trabaja sin caché.
	var readCache ports.Cache = ports.NoopCache{}
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, caché deshabilitada")
			_ = rc.Close()
		} else {
			readCache = rc
			defer rc.Close()
		}
		cancel()
	}

	// Eventos de movimientos aceptados.
	var publisher ports.MovementPublisher = ports.NoopPublisher{}
	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		conn, js, err := events.Connect(cfg.NATS.URL, log.Component("nats"))
		if err != nil {
			log.Warn().Err(err).Msg("NATS no disponible, eventos deshabilitados")
		} else if err := events.EnsureStream(ctx, js, cfg.NATS.Stream); err != nil {
			log.Warn().Err(err).Msg("stream JetStream, eventos deshabilitados")
			conn.Close()
		} else {
			nc = conn
			p := events.NewNATSPublisher(js, 256, log.Component("events"))
			go func() {
				if err := p.Run(ctx); err != nil {
					log.Error().Err(err).Msg("publicador de eventos finalizado")
				}
			}()
			publisher = p
		}
	}

	var stockMetrics ports.StockMetrics = ports.NoopMetrics{}
	var promMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		promMetrics = metrics.New(prometheus.DefaultRegisterer)
		stockMetrics = promMetrics
	}

	stockUC := inventory.NewStockUseCase(store.Tx, store.Products, store.Movements, store.Sellers,
		inventory.WithCalendar(cal),
		inventory.WithCache(readCache, ttl),
		inventory.WithPublisher(publisher),
		inventory.WithMetrics(stockMetrics),
		inventory.WithLogger(log.Component("stock")),
	)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.Products, store.Movements, cal)
	documentsUC := inventory.NewDocumentsUseCase(
		store.Movements, store.Products, store.Sellers,
		pdf.NewMarotoReceiptGenerator(), excel.NewSpreadsheetExporter(),
		cal, cfg.Business.Name, cfg.Business.ReceiptFootnote,
	)
	statsUC := analytics.NewStatsUseCase(store.Movements, store.Products, store.Sellers, readCache, ttl, cal, log.Component("stats"))
	authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Aromas Stock API",
	}))

	deps := httpRouter.RouterDeps{
		Stock:         stockUC,
		Replenishment: replenishmentUC,
		Documents:     documentsUC,
		ProductUC:     usecase.NewProductUseCase(store.Products, store.Categories, store.Movements, readCache),
		CategoryUC:    usecase.NewCategoryUseCase(store.Categories, store.Products),
		SellerUC:      usecase.NewSellerUseCase(store.Sellers),
		UserUC:        usecase.NewUserUseCase(store.Users),
		AuthUC:        authUC,
		StatsUC:       statsUC,
		JWTSecret:     cfg.JWT.Secret,
		AllowedOrigin: cfg.HTTP.AllowedOrigin,
		Logger:        log.Component("http"),
	}
	if promMetrics != nil {
		deps.HTTPMetrics = promMetrics
		deps.Gatherer = prometheus.DefaultGatherer
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()
	if nc != nil {
		if err := nc.Drain(); err != nil {
			log.Warn().Err(err).Msg("drenar conexión NATS")
		}
	}

	log.Info().Msg("aplicación detenida")
}
