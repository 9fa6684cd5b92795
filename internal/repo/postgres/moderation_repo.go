package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/model"
)

func parseRole(raw string) enums.Role {
	switch enums.Role(raw) {
	case enums.RoleManager, enums.RoleExecutor, enums.RoleClient:
		return enums.Role(raw)
	}
	return enums.RoleClient
}

type ModerationRepo struct {
	pool *pgxpool.Pool
}

func NewModerationRepo(pool *pgxpool.Pool) *ModerationRepo {
	return &ModerationRepo{pool: pool}
}

func (r *ModerationRepo) Create(ctx context.Context, rec model.ModerationRecord) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(rec.MessageID) == "" {
		return fmt.Errorf("moderation message id is required")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO moderation_messages
	(message_id, message_text, receiver_chat_id, receiver_handle, receiver_role, sender_handle, order_line_id, processed, created_at, resolution_log)
VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW(), '[]'::jsonb)
`, rec.MessageID, rec.Text, rec.ReceiverChatID, rec.ReceiverHandle, string(rec.ReceiverRole),
		rec.SenderHandle, rec.OrderLineID); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create moderation record: %w", err)
	}

	return nil
}

func (r *ModerationRepo) GetByMessageID(ctx context.Context, messageID string) (model.ModerationRecord, error) {
	if r.pool == nil {
		return model.ModerationRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(messageID) == "" {
		return model.ModerationRecord{}, fmt.Errorf("moderation message id is required")
	}

	var (
		rec    model.ModerationRecord
		rawLog []byte
		role   string
	)
	err := r.pool.QueryRow(ctx, `
SELECT message_id, message_text, receiver_chat_id, receiver_handle, receiver_role, sender_handle, order_line_id, processed, created_at, resolution_log
FROM moderation_messages
WHERE message_id = $1
`, messageID).Scan(&rec.MessageID, &rec.Text, &rec.ReceiverChatID, &rec.ReceiverHandle, &role,
		&rec.SenderHandle, &rec.OrderLineID, &rec.Processed, &rec.CreatedAt, &rawLog)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ModerationRecord{}, ErrModerationNotFound
		}
		return model.ModerationRecord{}, fmt.Errorf("get moderation record: %w", err)
	}

	rec.ReceiverRole = parseRole(role)
	if len(rawLog) > 0 {
		if err := json.Unmarshal(rawLog, &rec.ResolutionLog); err != nil {
			return model.ModerationRecord{}, fmt.Errorf("decode moderation resolution log: %w", err)
		}
	}

	return rec, nil
}

// MarkProcessed flips the processed flag once. The WHERE clause is the
// compare-and-set: a second resolver sees zero affected rows.
func (r *ModerationRepo) MarkProcessed(ctx context.Context, messageID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(messageID) == "" {
		return false, fmt.Errorf("moderation message id is required")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE moderation_messages
SET processed = TRUE
WHERE message_id = $1 AND processed = FALSE
`, messageID)
	if err != nil {
		return false, fmt.Errorf("mark moderation record processed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *ModerationRepo) UpdateText(ctx context.Context, messageID, text string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(messageID) == "" {
		return fmt.Errorf("moderation message id is required")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE moderation_messages
SET message_text = $2
WHERE message_id = $1
`, messageID, text)
	if err != nil {
		return fmt.Errorf("update moderation record text: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrModerationNotFound
	}

	return nil
}

// AppendResolution appends one entry to the append-only resolution log.
func (r *ModerationRepo) AppendResolution(ctx context.Context, messageID string, res model.Resolution) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(messageID) == "" {
		return fmt.Errorf("moderation message id is required")
	}

	entry, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode moderation resolution: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE moderation_messages
SET resolution_log = resolution_log || $2::jsonb
WHERE message_id = $1
`, messageID, entry)
	if err != nil {
		return fmt.Errorf("append moderation resolution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrModerationNotFound
	}

	return nil
}
