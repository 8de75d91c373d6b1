// seed crea el primer usuario administrador y las categorías iniciales.
//
// Uso: go run ./cmd/seed [-latin1] [categorias.csv]
// El administrador se toma de SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD / SEED_ADMIN_NAME.
// Sin archivo se cargan las categorías por defecto. El CSV tiene una categoría por fila
// (primera columna); -latin1 para planillas exportadas en ISO-8859-1.
// Se puede correr varias veces: lo que ya existe se saltea.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/jhoicas/aromas-stock/internal/application/usecase"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/storage"
	"github.com/jhoicas/aromas-stock/pkg/config"
	"github.com/jhoicas/aromas-stock/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	categories := defaultCategories
	if path := flag.Arg(0); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("abrir CSV")
		}
		categories, err = readCategories(f, *latin1)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("leer CSV")
		}
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, *cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.Close()

	s := seeder{
		users:      usecase.NewUserUseCase(store.Users),
		categories: usecase.NewCategoryUseCase(store.Categories, store.Products),
		log:        log.Component("seed"),
	}
	res, err := s.run(ctx, cfg.Seed, categories)
	if err != nil {
		log.Error().Err(err).Msg("seed incompleto")
		store.Close()
		os.Exit(1)
	}
	log.Info().
		Bool("admin_created", res.adminCreated).
		Int("categories_created", res.categoriesCreated).
		Int("categories_skipped", res.categoriesSkipped).
		Msg("seed finalizado")
}
