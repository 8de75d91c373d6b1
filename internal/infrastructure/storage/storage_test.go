package storage_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aromas-stock/internal/infrastructure/storage"
	"github.com/jhoicas/aromas-stock/pkg/config"
)

func TestOpen_Memoria(t *testing.T) {
	var cfg config.Config
	cfg.Store.Driver = "memory"

	s, err := storage.Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "memory", s.Driver)
	assert.NotNil(t, s.Products)
	assert.NotNil(t, s.Movements)
	assert.NotNil(t, s.Tx)

	all, err := s.Products.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	var cfg config.Config
	cfg.Store.Driver = "sqlite"

	_, err := storage.Open(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
