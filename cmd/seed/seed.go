package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/application/usecase"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/pkg/config"
)

var defaultCategories = []string{
	"Aceites esenciales",
	"Difusores",
	"Hornillos",
	"Sahumerios",
	"Velas",
}

type seeder struct {
	users      *usecase.UserUseCase
	categories *usecase.CategoryUseCase
	log        zerolog.Logger
}

type seedResult struct {
	adminCreated      bool
	categoriesCreated int
	categoriesSkipped int
}

func (s seeder) run(ctx context.Context, admin config.SeedConfig, categories []string) (seedResult, error) {
	var res seedResult
	if admin.AdminEmail != "" {
		_, err := s.users.Create(ctx, dto.CreateUserRequest{
			Email:    admin.AdminEmail,
			Password: admin.AdminPassword,
			Name:     admin.AdminName,
			Role:     entity.RoleAdmin,
		})
		switch {
		case err == nil:
			res.adminCreated = true
		case errors.Is(err, domain.ErrDuplicate):
			s.log.Info().Str("email", admin.AdminEmail).Msg("el administrador ya existe")
		default:
			return res, fmt.Errorf("crear administrador: %w", err)
		}
	} else {
		s.log.Warn().Msg("SEED_ADMIN_EMAIL vacío: no se crea administrador")
	}

	for _, name := range categories {
		_, err := s.categories.Create(ctx, dto.CategoryRequest{Name: name})
		switch {
		case err == nil:
			res.categoriesCreated++
		case errors.Is(err, domain.ErrDuplicate):
			res.categoriesSkipped++
		default:
			return res, fmt.Errorf("crear categoría %q: %w", name, err)
		}
	}
	return res, nil
}

// readCategories lee la primera columna de cada fila, sin vacíos ni repetidos.
// Una primera fila "categoria" o "nombre" se toma como encabezado.
func readCategories(r io.Reader, latin1 bool) ([]string, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	seen := make(map[string]struct{})
	var out []string
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		name := entity.CleanCategoryName(rec[0])
		if name == "" {
			continue
		}
		if row == 0 && isHeader(name) {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

func isHeader(s string) bool {
	switch strings.ToLower(strings.TrimPrefix(s, "\ufeff")) {
	case "categoria", "categoría", "nombre", "name", "category":
		return true
	}
	return false
}
