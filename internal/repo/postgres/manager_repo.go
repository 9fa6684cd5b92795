package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HanovichS/PixelHub/internal/domain/model"
)

// Managers are seeded out of band (migration or ops tooling), the bot only
// resolves and binds them.
type ManagerRepo struct {
	pool *pgxpool.Pool
}

func NewManagerRepo(pool *pgxpool.Pool) *ManagerRepo {
	return &ManagerRepo{pool: pool}
}

func (r *ManagerRepo) FindByHandle(ctx context.Context, handle string) (model.Manager, error) {
	if r.pool == nil {
		return model.Manager{}, fmt.Errorf("postgres pool is nil")
	}

	var m model.Manager
	err := r.pool.QueryRow(ctx, `
SELECT id, handle, chat_id, password_hash
FROM managers
WHERE handle = $1
`, strings.TrimSpace(handle)).Scan(&m.ID, &m.Handle, &m.ChatID, &m.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Manager{}, ErrManagerNotFound
		}
		return model.Manager{}, fmt.Errorf("find manager by handle: %w", err)
	}

	return m, nil
}

func (r *ManagerRepo) List(ctx context.Context) ([]model.Manager, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, handle, chat_id, password_hash
FROM managers
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	defer rows.Close()

	var managers []model.Manager
	for rows.Next() {
		var m model.Manager
		if err := rows.Scan(&m.ID, &m.Handle, &m.ChatID, &m.PasswordHash); err != nil {
			return nil, fmt.Errorf("scan manager: %w", err)
		}
		managers = append(managers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate managers: %w", err)
	}

	return managers, nil
}

func (r *ManagerRepo) SetChatID(ctx context.Context, id, chatID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 || chatID == 0 {
		return fmt.Errorf("invalid manager chat binding")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE managers
SET chat_id = $2
WHERE id = $1 AND chat_id IS NULL
`, id, chatID); err != nil {
		return fmt.Errorf("set manager chat_id: %w", err)
	}

	return nil
}
