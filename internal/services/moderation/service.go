package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/model"
)

var (
	ErrAlreadyResolved = errors.New("moderation record already resolved")
	ErrNoManagers      = errors.New("no managers reachable for broadcast")
)

const (
	actionApproved = "approved"
	actionEdited   = "edited"
	actionDeleted  = "deleted"
)

type Repo interface {
	Create(context.Context, model.ModerationRecord) error
	GetByMessageID(context.Context, string) (model.ModerationRecord, error)
	MarkProcessed(context.Context, string) (bool, error)
	UpdateText(context.Context, string, string) error
	AppendResolution(context.Context, string, model.Resolution) error
}

type ManagerRepo interface {
	List(context.Context) ([]model.Manager, error)
}

type LineContextRepo interface {
	GetContext(context.Context, int64) (model.LineContext, error)
}

type Button struct {
	Text string
	Data string
}

type Notifier interface {
	SendText(chatID int64, text string) error
	SendButtons(chatID int64, text string, rows [][]Button) error
}

// Service is the human-in-the-loop pipeline for flagged messages. A record
// resolves exactly once; the processed flag is the arbitration point between
// racing managers.
type Service struct {
	repo     Repo
	managers ManagerRepo
	lines    LineContextRepo
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repo, managers ManagerRepo, lines LineContextRepo, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		managers: managers,
		lines:    lines,
		notifier: notifier,
		logger:   logger,
	}
}

type FlagInput struct {
	Text           string
	ReceiverChatID int64
	ReceiverHandle string
	ReceiverRole   enums.Role
	SenderHandle   string
	OrderLineID    *int64
}

// Flag persists the record and broadcasts it to every registered manager.
// Delivery is best effort per manager: one failed send never aborts the rest.
func (s *Service) Flag(ctx context.Context, input FlagInput) (model.ModerationRecord, error) {
	rec := model.ModerationRecord{
		MessageID:      uuid.NewString(),
		Text:           input.Text,
		ReceiverChatID: input.ReceiverChatID,
		ReceiverHandle: input.ReceiverHandle,
		ReceiverRole:   input.ReceiverRole,
		SenderHandle:   input.SenderHandle,
		OrderLineID:    input.OrderLineID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return model.ModerationRecord{}, err
	}

	managers, err := s.managers.List(ctx)
	if err != nil {
		return model.ModerationRecord{}, err
	}

	text := s.broadcastText(ctx, rec)
	rows := [][]Button{{
		{Text: "✔️ Одобрить", Data: fmt.Sprintf("approve_%d_%s", rec.ReceiverChatID, rec.MessageID)},
		{Text: "✏️ Изменить", Data: fmt.Sprintf("edit_%d_%s", rec.ReceiverChatID, rec.MessageID)},
		{Text: "❌ Удалить", Data: fmt.Sprintf("delete_%d_%s", rec.ReceiverChatID, rec.MessageID)},
	}}

	delivered := 0
	for _, manager := range managers {
		if manager.ChatID == nil {
			continue
		}
		if err := s.notifier.SendButtons(*manager.ChatID, text, rows); err != nil {
			s.logger.Warn("moderation broadcast delivery failed",
				zap.Int64("manager_id", manager.ID),
				zap.Error(err))
			continue
		}
		delivered++
	}
	if delivered == 0 {
		s.logger.Warn("moderation broadcast reached no managers",
			zap.String("message_id", rec.MessageID))
		return rec, ErrNoManagers
	}

	return rec, nil
}

// Approve resolves the record and delivers the original text verbatim.
func (s *Service) Approve(ctx context.Context, messageID string, moderatorID int64) (model.ModerationRecord, error) {
	rec, err := s.resolve(ctx, messageID, moderatorID, actionApproved, "")
	if err != nil {
		return rec, err
	}

	if err := s.notifier.SendText(rec.ReceiverChatID, s.deliveryText(ctx, rec, rec.Text)); err != nil {
		s.logger.Error("approved message delivery failed",
			zap.String("message_id", rec.MessageID),
			zap.Error(err))
		return rec, fmt.Errorf("deliver approved message: %w", err)
	}

	return rec, nil
}

// Discard resolves the record with no delivery.
func (s *Service) Discard(ctx context.Context, messageID string, moderatorID int64) (model.ModerationRecord, error) {
	return s.resolve(ctx, messageID, moderatorID, actionDeleted, "")
}

// BeginEdit checks the record is still open. It does NOT resolve: the caller
// parks an awaiting-replacement sub-state and finishes with CompleteEdit.
func (s *Service) BeginEdit(ctx context.Context, messageID string) (model.ModerationRecord, error) {
	rec, err := s.repo.GetByMessageID(ctx, messageID)
	if err != nil {
		return model.ModerationRecord{}, err
	}
	if rec.Processed {
		return rec, ErrAlreadyResolved
	}
	return rec, nil
}

// CompleteEdit resolves the record with the moderator's replacement text and
// delivers that text instead of the original.
func (s *Service) CompleteEdit(ctx context.Context, messageID, newText string, moderatorID int64) (model.ModerationRecord, error) {
	rec, err := s.resolve(ctx, messageID, moderatorID, actionEdited, newText)
	if err != nil {
		return rec, err
	}

	if err := s.repo.UpdateText(ctx, rec.MessageID, newText); err != nil {
		return rec, err
	}

	if err := s.notifier.SendText(rec.ReceiverChatID, s.deliveryText(ctx, rec, newText)); err != nil {
		s.logger.Error("edited message delivery failed",
			zap.String("message_id", rec.MessageID),
			zap.Error(err))
		return rec, fmt.Errorf("deliver edited message: %w", err)
	}

	rec.Text = newText
	return rec, nil
}

func (s *Service) resolve(ctx context.Context, messageID string, moderatorID int64, action, newText string) (model.ModerationRecord, error) {
	rec, err := s.repo.GetByMessageID(ctx, messageID)
	if err != nil {
		return model.ModerationRecord{}, err
	}

	won, err := s.repo.MarkProcessed(ctx, messageID)
	if err != nil {
		return rec, err
	}
	if !won {
		return rec, ErrAlreadyResolved
	}
	rec.Processed = true

	res := model.Resolution{
		Action:      action,
		ModeratorID: moderatorID,
		NewText:     newText,
		At:          time.Now().UTC(),
	}
	if err := s.repo.AppendResolution(ctx, messageID, res); err != nil {
		return rec, err
	}
	rec.ResolutionLog = append(rec.ResolutionLog, res)

	return rec, nil
}

func (s *Service) broadcastText(ctx context.Context, rec model.ModerationRecord) string {
	lineID := "N/A"
	serviceName := "Неизвестная услуга"
	if lc, ok := s.lineContext(ctx, rec.OrderLineID); ok {
		lineID = fmt.Sprintf("%d", lc.LineID)
		serviceName = lc.ServiceName
	}

	return fmt.Sprintf(
		"⚠️ Подозрительное сообщение:\n\n%s\n\n📨 Отправитель: @%s\n👤 Получатель: @%s\n🔹 Для кого: %s\n📦 Номер услуги в заказе: #%s\n🛠 Название услуги: %s",
		rec.Text, rec.SenderHandle, rec.ReceiverHandle, rec.ReceiverRole, lineID, serviceName)
}

func (s *Service) deliveryText(ctx context.Context, rec model.ModerationRecord, text string) string {
	if lc, ok := s.lineContext(ctx, rec.OrderLineID); ok {
		return fmt.Sprintf(
			"📨 Новое сообщение\n\n📋 Заказ: №%d\n📦 Услуга в заказе: №%d\n\n📋 Услуга: %s\n💬 Текст сообщения:\n%s",
			lc.OrderID, lc.LineID, lc.ServiceName, text)
	}
	return fmt.Sprintf("📨 Новое сообщение\n\n💬 Текст сообщения:\n%s", text)
}

func (s *Service) lineContext(ctx context.Context, lineID *int64) (model.LineContext, bool) {
	if lineID == nil || s.lines == nil {
		return model.LineContext{}, false
	}
	lc, err := s.lines.GetContext(ctx, *lineID)
	if err != nil {
		s.logger.Warn("order line context lookup failed",
			zap.Int64("line_id", *lineID),
			zap.Error(err))
		return model.LineContext{}, false
	}
	return lc, true
}
