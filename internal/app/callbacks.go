package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/HanovichS/PixelHub/internal/dialog"
	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/infra/telegram"
	identitysvc "github.com/HanovichS/PixelHub/internal/services/identity"
	modsvc "github.com/HanovichS/PixelHub/internal/services/moderation"
	"github.com/HanovichS/PixelHub/internal/ui"
)

func (a *App) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	ident, err := a.identity.Resolve(ctx, cb.From.UserName, chatID)
	if err != nil {
		a.logger.Error("identity resolution failed on callback",
			zap.Int64("chat_id", chatID), zap.Error(err))
		a.answerCallback(cb.ID, msgInternalError)
		return
	}

	tok, ok := parseCallbackToken(cb.Data)
	if !ok {
		a.answerCallback(cb.ID, msgUnknownAction)
		return
	}

	// Every callback family is manager-only: moderation verdicts and the
	// enum pickers of the admin flows.
	if ident.Role != enums.RoleManager {
		a.answerCallback(cb.ID, msgDenied)
		return
	}

	if tok.kind == cbModeration {
		a.handleModerationCallback(ctx, chatID, ident, cb.ID, tok)
		return
	}

	state, ok := a.states.Get(chatID)
	if !ok {
		a.answerCallback(cb.ID, msgStaleCallback)
		return
	}

	switch tok.kind {
	case cbCategory:
		if state.Action != dialog.AddExecutorCategory {
			a.answerCallback(cb.ID, msgStaleCallback)
			return
		}
		a.states.Update(chatID, func(st *dialog.State) {
			st.Draft.Category = tok.category
			st.Action = dialog.AddExecutorDifficulty
		})
		a.answerCallback(cb.ID, "")
		a.sendInline(chatID, "Выберите сложность исполнителя:", difficultyRows("difficulty_"))

	case cbDifficulty:
		if state.Action != dialog.AddExecutorDifficulty {
			a.answerCallback(cb.ID, msgStaleCallback)
			return
		}
		executor, err := a.catalog.AddExecutor(ctx, state.Draft.Handle, state.Draft.Category, tok.difficulty, a.defaultHash)
		if err != nil {
			a.answerCallback(cb.ID, "")
			if a.replyDomainError(chatID, err) {
				a.states.Clear(chatID)
			}
			return
		}
		a.states.Clear(chatID)
		a.answerCallback(cb.ID, "")
		a.sendWithKeyboard(chatID,
			fmt.Sprintf("✅ Исполнитель @%s добавлен (ID %d).", executor.Handle, executor.ID),
			ui.MainMenuByRole(enums.RoleManager))

	case cbServiceCategory:
		if state.Action != dialog.AddServiceCategory {
			a.answerCallback(cb.ID, msgStaleCallback)
			return
		}
		a.states.Update(chatID, func(st *dialog.State) {
			st.Draft.Category = tok.category
			st.Action = dialog.AddServicePrice
		})
		a.answerCallback(cb.ID, "")
		a.sendText(chatID, "Введите минимальную цену услуги (USD):")

	case cbConfirmDelete:
		a.handleDeleteDecision(ctx, chatID, cb.ID, state, true)

	case cbCancelDelete:
		a.handleDeleteDecision(ctx, chatID, cb.ID, state, false)

	case cbEditExecutorCategory:
		a.applyEditCallback(chatID, cb.ID, state, dialog.EditExecutorField,
			a.catalog.RecategorizeExecutor(ctx, state.Draft.TargetID, tok.category))

	case cbEditExecutorDifficulty:
		a.applyEditCallback(chatID, cb.ID, state, dialog.EditExecutorField,
			a.catalog.SetExecutorDifficulty(ctx, state.Draft.TargetID, tok.difficulty))

	case cbEditServiceCategory:
		a.applyEditCallback(chatID, cb.ID, state, dialog.EditServiceField,
			a.catalog.RecategorizeService(ctx, state.Draft.TargetID, tok.category))

	case cbEditOrderStatus:
		a.applyEditCallback(chatID, cb.ID, state, dialog.EditOrderField,
			a.orders.SetStatus(ctx, state.Draft.TargetID, tok.status))

	case cbEditLineStatus:
		a.applyEditCallback(chatID, cb.ID, state, dialog.EditLineField,
			a.orders.SetLineStatus(ctx, state.Draft.TargetID, tok.status))

	default:
		a.answerCallback(cb.ID, msgUnknownAction)
	}
}

// applyEditCallback finishes an enum-valued field edit picked via inline
// button. The state must still be on the matching field-select step.
func (a *App) applyEditCallback(chatID int64, callbackID string, state dialog.State, expected dialog.Action, err error) {
	if state.Action != expected {
		a.answerCallback(callbackID, msgStaleCallback)
		return
	}
	a.answerCallback(callbackID, "")
	a.applyEdit(chatID, err)
}

func (a *App) handleModerationCallback(ctx context.Context, chatID int64, ident identitysvc.Identity, callbackID string, tok callbackToken) {
	switch tok.modAction {
	case modApprove:
		_, err := a.moderation.Approve(ctx, tok.messageID, ident.Manager.ID)
		a.ackModeration(callbackID, chatID, err, "✅ Сообщение отправлено")

	case modDelete:
		_, err := a.moderation.Discard(ctx, tok.messageID, ident.Manager.ID)
		a.ackModeration(callbackID, chatID, err, "🗑 Сообщение удалено")

	case modEdit:
		_, err := a.moderation.BeginEdit(ctx, tok.messageID)
		if err != nil {
			a.ackModeration(callbackID, chatID, err, "")
			return
		}
		a.setPendingEdit(chatID, tok.messageID)
		a.answerCallback(callbackID, "")
		a.sendWithKeyboard(chatID, "✏️ Введите новый текст сообщения:", ui.CancelOnly())
	}
}

func (a *App) ackModeration(callbackID string, chatID int64, err error, success string) {
	switch {
	case err == nil:
		a.answerCallback(callbackID, success)
	case errors.Is(err, modsvc.ErrAlreadyResolved):
		a.answerCallback(callbackID, msgAlreadyHandled)
	default:
		a.logger.Error("moderation verdict failed", zap.Int64("chat_id", chatID), zap.Error(err))
		a.answerCallback(callbackID, msgInternalError)
	}
}

func categoryRows(prefix string) [][]telegram.InlineButton {
	categories := enums.Categories()
	rows := make([][]telegram.InlineButton, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []telegram.InlineButton{{Text: string(c), Data: prefix + string(c)}})
	}
	return rows
}

func difficultyRows(prefix string) [][]telegram.InlineButton {
	row := make([]telegram.InlineButton, 0, enums.MaxDifficulty)
	for level := enums.MinDifficulty; level <= enums.MaxDifficulty; level++ {
		row = append(row, telegram.InlineButton{
			Text: strconv.Itoa(level),
			Data: prefix + strconv.Itoa(level),
		})
	}
	return [][]telegram.InlineButton{row}
}

func statusRows(prefix string) [][]telegram.InlineButton {
	statuses := enums.OrderStatuses()
	rows := make([][]telegram.InlineButton, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []telegram.InlineButton{{Text: s.Label(), Data: prefix + string(s)}})
	}
	return rows
}

func confirmDeleteRows() [][]telegram.InlineButton {
	return [][]telegram.InlineButton{{
		{Text: "✅ Да", Data: "confirm_delete"},
		{Text: "❌ Нет", Data: "cancel_delete"},
	}}
}
