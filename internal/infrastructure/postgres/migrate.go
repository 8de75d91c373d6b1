package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration archivo {version}_{nombre}.up.sql.
type Migration struct {
	Version string
	File    string
}

// PendingMigrations migraciones embebidas ordenadas por versión que no figuran en applied.
func PendingMigrations(applied map[string]bool) ([]Migration, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	var out []Migration
	for _, name := range names {
		file := strings.TrimPrefix(name, "migrations/")
		version, _, ok := strings.Cut(file, "_")
		if !ok {
			return nil, fmt.Errorf("migración sin versión: %s", file)
		}
		if applied[version] {
			continue
		}
		out = append(out, Migration{Version: version, File: file})
	}
	return out, nil
}

// Migrate aplica las migraciones pendientes, cada una en su transacción, y las registra en schema_migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}

	pending, err := PendingMigrations(applied)
	if err != nil {
		return err
	}
	for _, m := range pending {
		content, err := migrationFiles.ReadFile("migrations/" + m.File)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", m.File, err)
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.File, err)
		}
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("exec migration %s: %w", m.File, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, filename) VALUES ($1, $2)`, m.Version, m.File); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %s: %w", m.File, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.File, err)
		}
		log.Info().Str("migration", m.File).Msg("migración aplicada")
	}
	return nil
}
