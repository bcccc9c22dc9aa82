package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/railzwaylabs/riskscore/internal/config"
	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
	modeldomain "github.com/railzwaylabs/riskscore/internal/model/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table the application owns. Non-postgres drivers are
// migrated from these definitions.
func Models() []any {
	return []any{
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&featuredomain.CustomerFeatures{},
		&modeldomain.Run{},
	}
}

// Run brings the schema up to date. Postgres uses the embedded SQL
// migrations; other drivers fall back to gorm AutoMigrate.
func Run(ctx context.Context, conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	log = log.Named("migration")

	if cfg.Database.Driver != "postgres" {
		if err := conn.WithContext(ctx).AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("schema auto-migrated", zap.String("driver", cfg.Database.Driver))
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var version uint
	err = withAdvisoryLock(ctx, sqlDB, func() error {
		version, err = migratePostgres(sqlDB)
		return err
	})
	if err != nil {
		return err
	}

	checksum, err := MigrationsChecksum()
	if err != nil {
		return err
	}
	log.Info("schema migrated", zap.Uint("version", version), zap.String("checksum", checksum))
	return nil
}

func migratePostgres(db *sql.DB) (uint, error) {
	latest, err := LatestMigrationVersion()
	if err != nil {
		return 0, err
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return 0, fmt.Errorf("create migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, fmt.Errorf("create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return 0, err
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	current, err := ensureNotDirty(migrator)
	if err != nil {
		return 0, err
	}
	if current != latest {
		return 0, fmt.Errorf("schema version mismatch after migrate: got %d want %d", current, latest)
	}
	return current, nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return version, nil
}
