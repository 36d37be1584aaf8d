// internal/results/db.go
//
// Database helpers for finished-session results.
// Responsibilities:
//   - Opening the configured backend (SQLite by default, PostgreSQL, MySQL).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//
// Queries are written with ? placeholders; the dialect rewrites them.

package results

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrationsFS embed.FS

// Config selects and locates the backend.
type Config struct {
	Type string // "sqlite" | "postgres" | "mysql"
	Path string // SQLite file
	URL  string // PostgreSQL/MySQL DSN
}

// DB wraps the connection with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects, configures the pool and applies pending migrations.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	d, err := DialectFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	if _, ok := d.(SQLite); ok {
		// Ensure directory exists for ./data/revision.db, etc.
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	sqlDB, err := sql.Open(d.DriverName(), d.DSN(cfg.Path, cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.DriverName(), err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", d.DriverName(), err)
	}
	if err := d.ConfigureConnection(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("configure %s: %w", d.DriverName(), err)
	}

	db := &DB{DB: sqlDB, Dialect: d}
	if err := db.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies every embedded *.sql script for the dialect, in lexical
// order, each in its own transaction. Applied names go to _migrations.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, db.Dialect.MigrationsTableQuery()); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	dir := path.Join("migrations", db.Dialect.MigrationsDir())
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var done int
		err := db.QueryRowContext(ctx, db.Dialect.RewriteQuery(`SELECT 1 FROM _migrations WHERE name = ?`), name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrationsFS.ReadFile(path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, db.Dialect.RewriteQuery(`INSERT INTO _migrations(name) VALUES (?)`), name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		log.Info().Str("migration", name).Str("dialect", db.Dialect.DriverName()).Msg("applied")
	}
	return nil
}
