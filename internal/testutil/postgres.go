//go:build integration
// +build integration

package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/db"
)

const (
	dbUser     = "store_user"
	dbPassword = "store_pass"
	dbName     = "store"
)

// StartPostgres launches a temporary Postgres container, applies the schema and
// returns a pool plus its DSN. The container is terminated when the test ends.
func StartPostgres(ctx context.Context, t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image: "postgres:16-alpine",
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(terminateCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, mappedPort.Port(), dbName)

	require.NoError(t, db.RunMigrations(dsn, slog.New(slog.NewTextHandler(io.Discard, nil))))

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool, dsn
}

// SeedProduct inserts a category (if needed) and a product, returning the product id.
func SeedProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name, price string) int64 {
	t.Helper()

	_, err := pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES (1, 'General') ON CONFLICT (id) DO NOTHING`)
	require.NoError(t, err)

	var id int64
	err = pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, category_id)
		VALUES ($1, '', $2, 1)
		RETURNING id
	`, name, price).Scan(&id)
	require.NoError(t, err)
	return id
}
