// rebuild recalcula los saldos de todos los productos sumando el libro de movimientos completo.
//
// Uso: go run ./cmd/rebuild
// Usa la misma configuración que la API (STORE_DRIVER, DATABASE_URL, ...). Sale con código 1
// si algún producto no pudo actualizarse.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/aromas-stock/internal/application/inventory"
	"github.com/jhoicas/aromas-stock/internal/application/ports"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/cache"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/storage"
	"github.com/jhoicas/aromas-stock/pkg/civildate"
	"github.com/jhoicas/aromas-stock/pkg/config"
	"github.com/jhoicas/aromas-stock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, *cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.Close()

	// Si la API usa Redis, la caché de inventario y estadísticas queda invalidada al terminar.
	var readCache ports.Cache = ports.NoopCache{}
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close()
		readCache = rc
	}

	uc := inventory.NewStockUseCase(store.Tx, store.Products, store.Movements, store.Sellers,
		inventory.WithCalendar(civildate.New(cfg.Business.UTCOffsetHours)),
		inventory.WithCache(readCache, time.Duration(cfg.Redis.TTLSeconds)*time.Second),
		inventory.WithLogger(log.Component("rebuild")),
	)
	res, err := uc.RebuildBalances(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reconstrucción abortada")
		store.Close()
		os.Exit(1)
	}
	log.Info().
		Int("products_updated", res.ProductsUpdated).
		Int("products_failed", res.ProductsFailed).
		Int("movements_replayed", res.MovementsReplayed).
		Int("orphan_lines", res.OrphanLines).
		Int64("duration_ms", res.DurationMS).
		Msg("saldos reconstruidos")
	if res.ProductsFailed > 0 {
		store.Close()
		os.Exit(1)
	}
}
