package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const advisoryLockKey int64 = 7_341_902_118

// withAdvisoryLock runs fn while holding a session-level postgres advisory
// lock, so concurrent migrators fail fast instead of racing.
func withAdvisoryLock(ctx context.Context, db *sql.DB, fn func() error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var locked bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", advisoryLockKey).Scan(&locked); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !locked {
		return errors.New("another migration process holds the advisory lock")
	}

	runErr := fn()

	var released bool
	if err := conn.QueryRowContext(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockKey).Scan(&released); err != nil {
		return errors.Join(runErr, fmt.Errorf("release advisory lock: %w", err))
	}
	if !released {
		return errors.Join(runErr, errors.New("advisory lock was not held by this session"))
	}
	return runErr
}
