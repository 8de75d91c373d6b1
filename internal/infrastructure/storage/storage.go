// Package storage elige el backend de persistencia según la configuración y
// entrega los repositorios ya construidos.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/aromas-stock/internal/application/inventory"
	"github.com/jhoicas/aromas-stock/internal/domain/repository"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/memory"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/aromas-stock/pkg/config"
)

// Store repositorios de un mismo backend.
type Store struct {
	Driver     string
	Products   repository.ProductRepository
	Movements  repository.MovementRepository
	Categories repository.CategoryRepository
	Sellers    repository.SellerRepository
	Users      repository.UserRepository
	Tx         inventory.TxRunner

	close func()
}

// Open abre el backend indicado por STORE_DRIVER. Con postgres aplica las migraciones pendientes.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		m := memory.New()
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Store{
			Driver:     "memory",
			Products:   m.Products(),
			Movements:  m.Movements(),
			Categories: m.Categories(),
			Sellers:    m.Sellers(),
			Users:      m.Users(),
			Tx:         m.TxRunner(),
			close:      func() {},
		}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		return &Store{
			Driver:     "postgres",
			Products:   postgres.NewProductRepository(pool),
			Movements:  postgres.NewMovementRepository(pool),
			Categories: postgres.NewCategoryRepository(pool),
			Sellers:    postgres.NewSellerRepository(pool),
			Users:      postgres.NewUserRepository(pool),
			Tx:         postgres.NewTxRunner(pool),
			close:      pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Store.Driver)
	}
}

// Close libera las conexiones del backend.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
