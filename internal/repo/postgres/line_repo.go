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

// LineRepo owns order lines. Every mutation runs in one transaction with the
// parent order's aggregate recomputation, so the derived columns never drift.
type LineRepo struct {
	pool *pgxpool.Pool
}

func NewLineRepo(pool *pgxpool.Pool) *LineRepo {
	return &LineRepo{pool: pool}
}

func (r *LineRepo) Create(ctx context.Context, input model.OrderLine) (model.OrderLine, error) {
	if r.pool == nil {
		return model.OrderLine{}, fmt.Errorf("postgres pool is nil")
	}
	if input.OrderID <= 0 || input.ServiceID <= 0 {
		return model.OrderLine{}, fmt.Errorf("invalid order line payload")
	}
	if input.Quantity <= 0 {
		return model.OrderLine{}, fmt.Errorf("order line quantity must be positive")
	}
	if input.UnitPrice < 0 {
		return model.OrderLine{}, fmt.Errorf("order line price must not be negative")
	}

	var line model.OrderLine
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
INSERT INTO order_lines (order_id, service_id, executor_id, quantity, unit_price, created_at, estimated_completion, status)
VALUES ($1, $2, $3, $4, $5, NOW(), $6, $7)
RETURNING id, order_id, service_id, executor_id, quantity, unit_price, created_at, estimated_completion, status
`, input.OrderID, input.ServiceID, input.ExecutorID, input.Quantity, input.UnitPrice,
			input.EstimatedCompletion, string(enums.StatusProcessing)).
			Scan(&line.ID, &line.OrderID, &line.ServiceID, &line.ExecutorID, &line.Quantity,
				&line.UnitPrice, &line.CreatedAt, &line.EstimatedCompletion, &line.Status)
		if err != nil {
			return fmt.Errorf("create order line: %w", err)
		}

		return recomputeOrderAggregates(ctx, tx, input.OrderID)
	})
	if err != nil {
		return model.OrderLine{}, err
	}

	return line, nil
}

func (r *LineRepo) GetByID(ctx context.Context, id int64) (model.OrderLine, error) {
	if r.pool == nil {
		return model.OrderLine{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.OrderLine{}, fmt.Errorf("invalid order line id")
	}

	var line model.OrderLine
	err := r.pool.QueryRow(ctx, `
SELECT id, order_id, service_id, executor_id, quantity, unit_price, created_at, estimated_completion, status
FROM order_lines
WHERE id = $1
`, id).Scan(&line.ID, &line.OrderID, &line.ServiceID, &line.ExecutorID, &line.Quantity,
		&line.UnitPrice, &line.CreatedAt, &line.EstimatedCompletion, &line.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.OrderLine{}, ErrOrderLineNotFound
		}
		return model.OrderLine{}, fmt.Errorf("get order line: %w", err)
	}

	return line, nil
}

func (r *LineRepo) ListByOrder(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("invalid order id")
	}
	return r.listWhere(ctx, `WHERE order_id = $1`, []any{orderID})
}

func (r *LineRepo) ListByExecutor(ctx context.Context, executorID int64) ([]model.OrderLine, error) {
	if executorID <= 0 {
		return nil, fmt.Errorf("invalid executor id")
	}
	return r.listWhere(ctx, `WHERE executor_id = $1`, []any{executorID})
}

func (r *LineRepo) List(ctx context.Context) ([]model.OrderLine, error) {
	return r.listWhere(ctx, ``, nil)
}

func (r *LineRepo) listWhere(ctx context.Context, where string, args []any) ([]model.OrderLine, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, order_id, service_id, executor_id, quantity, unit_price, created_at, estimated_completion, status
FROM order_lines
`+where+`
ORDER BY id
`, args...)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var line model.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ServiceID, &line.ExecutorID, &line.Quantity,
			&line.UnitPrice, &line.CreatedAt, &line.EstimatedCompletion, &line.Status); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

// GetContext loads the order and service naming for one line, used when
// rendering message headers.
func (r *LineRepo) GetContext(ctx context.Context, id int64) (model.LineContext, error) {
	if r.pool == nil {
		return model.LineContext{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.LineContext{}, fmt.Errorf("invalid order line id")
	}

	var lc model.LineContext
	err := r.pool.QueryRow(ctx, `
SELECT ol.id, ol.order_id, s.name
FROM order_lines ol
JOIN services s ON s.id = ol.service_id
WHERE ol.id = $1
`, id).Scan(&lc.LineID, &lc.OrderID, &lc.ServiceName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LineContext{}, ErrOrderLineNotFound
		}
		return model.LineContext{}, fmt.Errorf("get order line context: %w", err)
	}

	return lc, nil
}

func (r *LineRepo) UpdateService(ctx context.Context, id, serviceID int64) error {
	if serviceID <= 0 {
		return fmt.Errorf("invalid service id")
	}
	return r.updateField(ctx, id, `service_id = $2`, serviceID)
}

func (r *LineRepo) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("order line quantity must be positive")
	}
	return r.updateField(ctx, id, `quantity = $2`, quantity)
}

func (r *LineRepo) UpdatePrice(ctx context.Context, id int64, unitPrice float64) error {
	if unitPrice < 0 {
		return fmt.Errorf("order line price must not be negative")
	}
	return r.updateField(ctx, id, `unit_price = $2`, unitPrice)
}

func (r *LineRepo) UpdateExecutor(ctx context.Context, id, executorID int64) error {
	if executorID <= 0 {
		return fmt.Errorf("invalid executor id")
	}
	return r.updateField(ctx, id, `executor_id = $2`, executorID)
}

func (r *LineRepo) UpdateCompletion(ctx context.Context, id int64, completion time.Time) error {
	return r.updateField(ctx, id, `estimated_completion = $2`, completion)
}

func (r *LineRepo) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) error {
	return r.updateField(ctx, id, `status = $2`, string(status))
}

func (r *LineRepo) updateField(ctx context.Context, id int64, assignment string, value any) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid order line id")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var orderID int64
		err := tx.QueryRow(ctx, `
UPDATE order_lines
SET `+assignment+`
WHERE id = $1
RETURNING order_id
`, id, value).Scan(&orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderLineNotFound
			}
			return fmt.Errorf("update order line: %w", err)
		}

		return recomputeOrderAggregates(ctx, tx, orderID)
	})
}

func (r *LineRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid order line id")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var orderID int64
		err := tx.QueryRow(ctx, `
DELETE FROM order_lines
WHERE id = $1
RETURNING order_id
`, id).Scan(&orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderLineNotFound
			}
			return fmt.Errorf("delete order line: %w", err)
		}

		return recomputeOrderAggregates(ctx, tx, orderID)
	})
}
