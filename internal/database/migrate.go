package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one versioned SQL file pair
type Migration struct {
	Version string
	Up      string
	Down    string
}

// Migrator applies the embedded schema migrations
type Migrator struct {
	pool   *pgxpool.Pool
	logger *log.Logger
	fsys   fs.FS
}

// NewMigrator creates a new migrator over the embedded migrations
func NewMigrator(pool *pgxpool.Pool, logger *log.Logger) *Migrator {
	sub, _ := fs.Sub(migrationsFS, "migrations")
	return &Migrator{pool: pool, logger: logger, fsys: sub}
}

// LoadMigrations reads "<version>_<name>.up.sql" and ".down.sql" pairs from
// fsys, sorted by version.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		version, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s has no version prefix", name)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version}
			byVersion[version] = m
		}

		switch {
		case strings.HasSuffix(name, ".up.sql"):
			m.Up = name
		case strings.HasSuffix(name, ".down.sql"):
			m.Down = name
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %s has no up file", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// Up runs all pending migrations, each in its own transaction
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := LoadMigrations(m.fsys)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		applied, err := m.isMigrationApplied(ctx, migration.Version)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			m.logger.Printf("Migration %s already applied, skipping", migration.Up)
			continue
		}

		content, err := fs.ReadFile(m.fsys, migration.Up)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", migration.Up, err)
		}

		m.logger.Printf("Applying migration: %s", migration.Up)
		err = pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", migration.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Up, err)
		}
	}

	m.logger.Println("All migrations applied successfully")
	return nil
}

// Down rolls back the last applied migration
func (m *Migrator) Down(ctx context.Context) error {
	var version string
	err := m.pool.QueryRow(ctx, `
		SELECT version FROM schema_migrations
		ORDER BY version DESC
		LIMIT 1
	`).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	migrations, err := LoadMigrations(m.fsys)
	if err != nil {
		return err
	}

	var target *Migration
	for i := range migrations {
		if migrations[i].Version == version {
			target = &migrations[i]
			break
		}
	}
	if target == nil || target.Down == "" {
		return fmt.Errorf("down migration file not found for version %s", version)
	}

	content, err := fs.ReadFile(m.fsys, target.Down)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", target.Down, err)
	}

	m.logger.Printf("Rolling back migration: %s", target.Down)
	err = pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", version)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to roll back migration %s: %w", target.Down, err)
	}

	return nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW() NOT NULL
		)
	`)
	return err
}

func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	return exists, err
}
