package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/model"
)

type ServiceRepo struct {
	pool *pgxpool.Pool
}

func NewServiceRepo(pool *pgxpool.Pool) *ServiceRepo {
	return &ServiceRepo{pool: pool}
}

func (r *ServiceRepo) Create(ctx context.Context, name string, category enums.Category, minPrice float64) (model.Service, error) {
	if r.pool == nil {
		return model.Service{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(name) == "" {
		return model.Service{}, fmt.Errorf("service name is required")
	}
	if minPrice < 0 {
		return model.Service{}, fmt.Errorf("service price must not be negative")
	}

	var s model.Service
	err := r.pool.QueryRow(ctx, `
INSERT INTO services (name, category, min_price)
VALUES ($1, $2, $3)
RETURNING id, name, category, min_price
`, strings.TrimSpace(name), string(category), minPrice).Scan(&s.ID, &s.Name, &s.Category, &s.MinPrice)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Service{}, ErrAlreadyExists
		}
		return model.Service{}, fmt.Errorf("create service: %w", err)
	}

	return s, nil
}

func (r *ServiceRepo) GetByID(ctx context.Context, id int64) (model.Service, error) {
	if r.pool == nil {
		return model.Service{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.Service{}, fmt.Errorf("invalid service id")
	}

	var s model.Service
	err := r.pool.QueryRow(ctx, `
SELECT id, name, category, min_price
FROM services
WHERE id = $1
`, id).Scan(&s.ID, &s.Name, &s.Category, &s.MinPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Service{}, ErrServiceNotFound
		}
		return model.Service{}, fmt.Errorf("get service: %w", err)
	}

	return s, nil
}

func (r *ServiceRepo) List(ctx context.Context) ([]model.Service, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name, category, min_price
FROM services
ORDER BY category, name
`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.MinPrice); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return services, nil
}

func (r *ServiceRepo) UpdateName(ctx context.Context, id int64, name string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 || strings.TrimSpace(name) == "" {
		return fmt.Errorf("invalid service name update")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE services
SET name = $2
WHERE id = $1
`, id, strings.TrimSpace(name))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("update service name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}

	return nil
}

func (r *ServiceRepo) UpdateCategory(ctx context.Context, id int64, category enums.Category) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid service id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE services
SET category = $2
WHERE id = $1
`, id, string(category))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("update service category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}

	return nil
}

func (r *ServiceRepo) UpdatePrice(ctx context.Context, id int64, minPrice float64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 || minPrice < 0 {
		return fmt.Errorf("invalid service price update")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE services
SET min_price = $2
WHERE id = $1
`, id, minPrice)
	if err != nil {
		return fmt.Errorf("update service price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}

	return nil
}

func (r *ServiceRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid service id")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}

	return nil
}
