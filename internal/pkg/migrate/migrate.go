// Package migrate applies embedded goose migrations on a pgx pool.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var (
	// ErrSetDialect is returned when goose rejects the postgres dialect.
	ErrSetDialect = errors.New("migrate: set dialect")
	// ErrApply is returned when a migration fails.
	ErrApply = errors.New("migrate: apply migrations")
)

// DefaultTable is the goose version table used when Up receives an empty name.
const DefaultTable = "mailpress_schema_migrations"

// Up applies every pending migration found at the root of migrations.
func Up(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string) error {
	if table == "" {
		table = DefaultTable
	}

	// the *sql.DB shares the pool's connections; closing it would close the pool
	db := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: slog.Default().With("component", "migrate")})
	goose.SetTableName(table)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrApply, err)
	}

	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf logs only; goose returns the error to Up, which lets the app shut down cleanly.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
