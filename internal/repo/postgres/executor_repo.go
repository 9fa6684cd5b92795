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

type ExecutorRepo struct {
	pool *pgxpool.Pool
}

func NewExecutorRepo(pool *pgxpool.Pool) *ExecutorRepo {
	return &ExecutorRepo{pool: pool}
}

func (r *ExecutorRepo) Create(ctx context.Context, handle string, category enums.Category, difficulty int, passwordHash string) (model.Executor, error) {
	if r.pool == nil {
		return model.Executor{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(handle) == "" {
		return model.Executor{}, fmt.Errorf("executor handle is required")
	}
	if !enums.ValidDifficulty(difficulty) {
		return model.Executor{}, fmt.Errorf("invalid difficulty level")
	}

	var e model.Executor
	err := r.pool.QueryRow(ctx, `
INSERT INTO executors (handle, category, difficulty, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING id, handle, chat_id, category, difficulty, password_hash
`, strings.TrimSpace(handle), string(category), difficulty, passwordHash).
		Scan(&e.ID, &e.Handle, &e.ChatID, &e.Category, &e.Difficulty, &e.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Executor{}, ErrAlreadyExists
		}
		return model.Executor{}, fmt.Errorf("create executor: %w", err)
	}

	return e, nil
}

func (r *ExecutorRepo) GetByID(ctx context.Context, id int64) (model.Executor, error) {
	if r.pool == nil {
		return model.Executor{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.Executor{}, fmt.Errorf("invalid executor id")
	}

	var e model.Executor
	err := r.pool.QueryRow(ctx, `
SELECT id, handle, chat_id, category, difficulty, password_hash
FROM executors
WHERE id = $1
`, id).Scan(&e.ID, &e.Handle, &e.ChatID, &e.Category, &e.Difficulty, &e.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Executor{}, ErrExecutorNotFound
		}
		return model.Executor{}, fmt.Errorf("get executor: %w", err)
	}

	return e, nil
}

func (r *ExecutorRepo) FindByHandle(ctx context.Context, handle string) (model.Executor, error) {
	if r.pool == nil {
		return model.Executor{}, fmt.Errorf("postgres pool is nil")
	}

	var e model.Executor
	err := r.pool.QueryRow(ctx, `
SELECT id, handle, chat_id, category, difficulty, password_hash
FROM executors
WHERE handle = $1
`, strings.TrimSpace(handle)).Scan(&e.ID, &e.Handle, &e.ChatID, &e.Category, &e.Difficulty, &e.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Executor{}, ErrExecutorNotFound
		}
		return model.Executor{}, fmt.Errorf("find executor by handle: %w", err)
	}

	return e, nil
}

func (r *ExecutorRepo) List(ctx context.Context) ([]model.Executor, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, handle, chat_id, category, difficulty, password_hash
FROM executors
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list executors: %w", err)
	}
	defer rows.Close()

	var executors []model.Executor
	for rows.Next() {
		var e model.Executor
		if err := rows.Scan(&e.ID, &e.Handle, &e.ChatID, &e.Category, &e.Difficulty, &e.PasswordHash); err != nil {
			return nil, fmt.Errorf("scan executor: %w", err)
		}
		executors = append(executors, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executors: %w", err)
	}

	return executors, nil
}

func (r *ExecutorRepo) SetChatID(ctx context.Context, id, chatID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 || chatID == 0 {
		return fmt.Errorf("invalid executor chat binding")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE executors
SET chat_id = $2
WHERE id = $1 AND chat_id IS NULL
`, id, chatID); err != nil {
		return fmt.Errorf("set executor chat_id: %w", err)
	}

	return nil
}

func (r *ExecutorRepo) UpdateHandle(ctx context.Context, id int64, handle string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 || strings.TrimSpace(handle) == "" {
		return fmt.Errorf("invalid executor handle update")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE executors
SET handle = $2
WHERE id = $1
`, id, strings.TrimSpace(handle))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("update executor handle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExecutorNotFound
	}

	return nil
}

func (r *ExecutorRepo) UpdateCategory(ctx context.Context, id int64, category enums.Category) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid executor id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE executors
SET category = $2
WHERE id = $1
`, id, string(category))
	if err != nil {
		return fmt.Errorf("update executor category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExecutorNotFound
	}

	return nil
}

func (r *ExecutorRepo) UpdateDifficulty(ctx context.Context, id int64, difficulty int) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 || !enums.ValidDifficulty(difficulty) {
		return fmt.Errorf("invalid executor difficulty update")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE executors
SET difficulty = $2
WHERE id = $1
`, id, difficulty)
	if err != nil {
		return fmt.Errorf("update executor difficulty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExecutorNotFound
	}

	return nil
}

func (r *ExecutorRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid executor id")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM executors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete executor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExecutorNotFound
	}

	return nil
}
