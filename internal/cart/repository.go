package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Repository stores whole cart aggregates. Save must fail with
// ErrVersionConflict when the stored version differs from c.Version.
type Repository interface {
	Create(ctx context.Context, c *Cart) error
	Get(ctx context.Context, cartID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, c *Cart) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO carts (id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, c.ID, c.Version, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, cartID string) (*Cart, error) {
	c := &Cart{Items: []Item{}}
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, version, created_at, updated_at
		FROM carts
		WHERE id = $1
	`, cartID).Scan(&c.ID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT product_id, quantity, unit_price::text
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY position
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ProductID, &it.Quantity, &price); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse unit price %q: %w", price, err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return c, nil
}

// Save replaces the stored aggregate in one transaction. The version bump is
// conditional on the version the cart was loaded with.
func (r *PostgresRepository) Save(ctx context.Context, c *Cart) (err error) {
	if err := c.Validate(); err != nil {
		return err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE carts
		SET version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $2
	`, c.ID, c.Version, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrVersionConflict
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, c.ID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}

	for i, it := range c.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, position)
			VALUES ($1, $2, $3, $4, $5)
		`, c.ID, it.ProductID, it.Quantity, it.UnitPrice.StringFixed(2), i)
		if err != nil {
			return fmt.Errorf("insert cart item %d: %w", it.ProductID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	c.Version++
	return nil
}
