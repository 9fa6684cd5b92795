package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/model"
)

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func (r *OrderRepo) Create(ctx context.Context, clientID int64) (model.Order, error) {
	if r.pool == nil {
		return model.Order{}, fmt.Errorf("postgres pool is nil")
	}
	if clientID <= 0 {
		return model.Order{}, fmt.Errorf("invalid client id")
	}

	var o model.Order
	err := r.pool.QueryRow(ctx, `
INSERT INTO orders (client_id, created_at, status, price)
VALUES ($1, NOW(), $2, 0)
RETURNING id, client_id, created_at, estimated_completion, status, price
`, clientID, string(enums.StatusProcessing)).
		Scan(&o.ID, &o.ClientID, &o.CreatedAt, &o.EstimatedCompletion, &o.Status, &o.Price)
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}

	return o, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (model.Order, error) {
	if r.pool == nil {
		return model.Order{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.Order{}, fmt.Errorf("invalid order id")
	}

	var o model.Order
	err := r.pool.QueryRow(ctx, `
SELECT id, client_id, created_at, estimated_completion, status, price
FROM orders
WHERE id = $1
`, id).Scan(&o.ID, &o.ClientID, &o.CreatedAt, &o.EstimatedCompletion, &o.Status, &o.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, ErrOrderNotFound
		}
		return model.Order{}, fmt.Errorf("get order: %w", err)
	}

	return o, nil
}

func (r *OrderRepo) List(ctx context.Context) ([]model.Order, error) {
	return r.listWhere(ctx, ``, nil)
}

func (r *OrderRepo) ListByClient(ctx context.Context, clientID int64) ([]model.Order, error) {
	if clientID <= 0 {
		return nil, fmt.Errorf("invalid client id")
	}
	return r.listWhere(ctx, `WHERE client_id = $1`, []any{clientID})
}

func (r *OrderRepo) listWhere(ctx context.Context, where string, args []any) ([]model.Order, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, client_id, created_at, estimated_completion, status, price
FROM orders
`+where+`
ORDER BY id
`, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.ClientID, &o.CreatedAt, &o.EstimatedCompletion, &o.Status, &o.Price); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

func (r *OrderRepo) UpdateClient(ctx context.Context, id, clientID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 || clientID <= 0 {
		return fmt.Errorf("invalid order client update")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE orders
SET client_id = $2
WHERE id = $1
`, id, clientID)
	if err != nil {
		return fmt.Errorf("update order client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid order id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = $2
WHERE id = $1
`, id, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepo) UpdateCompletion(ctx context.Context, id int64, completion time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid order id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE orders
SET estimated_completion = $2
WHERE id = $1
`, id, completion)
	if err != nil {
		return fmt.Errorf("update order completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid order id")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// RecomputeAggregates reloads the order's lines and rewrites the derived
// columns: price is the sum of line unit prices, estimated completion is the
// latest line deadline or NULL when no line carries one.
func (r *OrderRepo) RecomputeAggregates(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid order id")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		return recomputeOrderAggregates(ctx, tx, id)
	})
}

func recomputeOrderAggregates(ctx context.Context, tx pgx.Tx, orderID int64) error {
	tag, err := tx.Exec(ctx, `
UPDATE orders
SET price = COALESCE((SELECT SUM(unit_price) FROM order_lines WHERE order_id = $1), 0),
    estimated_completion = (SELECT MAX(estimated_completion) FROM order_lines WHERE order_id = $1)
WHERE id = $1
`, orderID)
	if err != nil {
		return fmt.Errorf("recompute order aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}
