package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Open connects to Postgres, retrying while the database comes up.
func Open(ctx context.Context, databaseURL string, attempts int, delay time.Duration, logger zerolog.Logger) (*sql.DB, error) {
	if attempts < 1 {
		attempts = 1
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for i := 1; i <= attempts; i++ {
		err = pingWithTimeout(ctx, db, 5*time.Second)
		if err == nil {
			return db, nil
		}
		logger.Warn().Err(err).Int("attempt", i).Int("of", attempts).Msg("waiting for database")
		if i == attempts {
			break
		}

		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	db.Close()
	return nil, fmt.Errorf("ping database: %w", err)
}

func pingWithTimeout(ctx context.Context, db *sql.DB, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return db.PingContext(ctx)
}

// Migrate applies pending migrations from dir. It reports whether anything changed.
func Migrate(databaseURL, dir string) (bool, error) {
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return false, fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("apply migrations: %w", err)
	}
	return true, nil
}
