package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/database"
	"github.com/kozaktomas/photobook/internal/database/mariadb"
	"github.com/kozaktomas/photobook/internal/database/postgres"
	"github.com/kozaktomas/photobook/internal/database/sqlite"
)

// openStorage connects the backend named by DATABASE_URL and registers it.
// Status lines go to status, never to stdout where documents may be written.
// The returned closer releases the connection pool.
func openStorage(ctx context.Context, cfg *config.Config, status io.Writer) (database.BookWriter, io.Closer, error) {
	var closer io.Closer
	switch database.Scheme(cfg.Database.URL) {
	case database.SchemePostgres:
		fmt.Fprintln(status, "Connecting to PostgreSQL database...")
		pool, err := postgres.Initialize(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		closer = pool
	case database.SchemeMySQL:
		fmt.Fprintln(status, "Connecting to MariaDB database...")
		pool, err := mariadb.Initialize(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize MariaDB: %w", err)
		}
		closer = pool
	default:
		store, err := sqlite.Initialize(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		closer = store
	}

	writer, err := database.GetBookWriter(ctx)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	fmt.Fprintf(status, "Book storage enabled (%s)\n", database.Backend())
	return writer, closer, nil
}
