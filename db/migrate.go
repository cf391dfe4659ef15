package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/ascent-climbing/ascent-backend/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies pending schema migrations in numeric order. The SQL
// files are embedded in the binary, so startup migration needs nothing but a
// database URL. Safe to call on every boot; applied migrations are skipped.
func RunMigrations(dbURL string) error {
	log := logger.GetLogger()

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, toPgx5URL(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warnw("Failed to close migrate instance", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	if version, dirty, verr := m.Version(); verr == nil {
		log.Infow("Migrations applied", "version", version, "dirty", dirty)
	} else {
		log.Info("Migrations applied")
	}
	return nil
}

// toPgx5URL rewrites a postgres:// URL to the pgx5:// scheme golang-migrate's
// pgx v5 driver registers under.
func toPgx5URL(dbURL string) string {
	if rest, ok := strings.CutPrefix(dbURL, "postgresql:"); ok {
		return "pgx5:" + rest
	}
	if rest, ok := strings.CutPrefix(dbURL, "postgres:"); ok {
		return "pgx5:" + rest
	}
	return dbURL
}
