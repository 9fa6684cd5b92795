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

type ClientRepo struct {
	pool *pgxpool.Pool
}

func NewClientRepo(pool *pgxpool.Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

func (r *ClientRepo) Create(ctx context.Context, handle, passwordHash string) (model.Client, error) {
	if r.pool == nil {
		return model.Client{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(handle) == "" {
		return model.Client{}, fmt.Errorf("client handle is required")
	}

	var c model.Client
	err := r.pool.QueryRow(ctx, `
INSERT INTO clients (handle, password_hash)
VALUES ($1, $2)
RETURNING id, handle, chat_id, password_hash
`, strings.TrimSpace(handle), passwordHash).Scan(&c.ID, &c.Handle, &c.ChatID, &c.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Client{}, ErrAlreadyExists
		}
		return model.Client{}, fmt.Errorf("create client: %w", err)
	}

	return c, nil
}

// GetOrCreate provisions a client row for a handle if none exists yet.
// Safe under interleaved calls: the insert ignores a concurrent winner and
// the follow-up lookup returns whichever row won.
func (r *ClientRepo) GetOrCreate(ctx context.Context, handle, passwordHash string) (model.Client, error) {
	if r.pool == nil {
		return model.Client{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(handle) == "" {
		return model.Client{}, fmt.Errorf("client handle is required")
	}

	var c model.Client
	err := r.pool.QueryRow(ctx, `
INSERT INTO clients (handle, password_hash)
VALUES ($1, $2)
ON CONFLICT (handle) DO NOTHING
RETURNING id, handle, chat_id, password_hash
`, strings.TrimSpace(handle), passwordHash).Scan(&c.ID, &c.Handle, &c.ChatID, &c.PasswordHash)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Client{}, fmt.Errorf("get or create client: %w", err)
	}

	return r.FindByHandle(ctx, handle)
}

func (r *ClientRepo) GetByID(ctx context.Context, id int64) (model.Client, error) {
	if r.pool == nil {
		return model.Client{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.Client{}, fmt.Errorf("invalid client id")
	}

	var c model.Client
	err := r.pool.QueryRow(ctx, `
SELECT id, handle, chat_id, password_hash
FROM clients
WHERE id = $1
`, id).Scan(&c.ID, &c.Handle, &c.ChatID, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Client{}, ErrClientNotFound
		}
		return model.Client{}, fmt.Errorf("get client: %w", err)
	}

	return c, nil
}

func (r *ClientRepo) FindByHandle(ctx context.Context, handle string) (model.Client, error) {
	if r.pool == nil {
		return model.Client{}, fmt.Errorf("postgres pool is nil")
	}

	var c model.Client
	err := r.pool.QueryRow(ctx, `
SELECT id, handle, chat_id, password_hash
FROM clients
WHERE handle = $1
`, strings.TrimSpace(handle)).Scan(&c.ID, &c.Handle, &c.ChatID, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Client{}, ErrClientNotFound
		}
		return model.Client{}, fmt.Errorf("find client by handle: %w", err)
	}

	return c, nil
}

func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, handle, chat_id, password_hash
FROM clients
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Handle, &c.ChatID, &c.PasswordHash); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}

func (r *ClientRepo) SetChatID(ctx context.Context, id, chatID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 || chatID == 0 {
		return fmt.Errorf("invalid client chat binding")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE clients
SET chat_id = $2
WHERE id = $1 AND chat_id IS NULL
`, id, chatID); err != nil {
		return fmt.Errorf("set client chat_id: %w", err)
	}

	return nil
}

func (r *ClientRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid client id")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}

	return nil
}
