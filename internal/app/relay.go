package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/HanovichS/PixelHub/internal/dialog"
	"github.com/HanovichS/PixelHub/internal/domain/enums"
	identitysvc "github.com/HanovichS/PixelHub/internal/services/identity"
	modsvc "github.com/HanovichS/PixelHub/internal/services/moderation"
	"github.com/HanovichS/PixelHub/internal/ui"
)

// startContactExecutor begins the relay flow towards a line's executor.
// Managers may pick any line, a client only lines of their own orders.
func (a *App) startContactExecutor(ctx context.Context, chatID int64, ident identitysvc.Identity) {
	a.states.Set(chatID, dialog.State{Action: dialog.RelayLineSelect})
	a.sendWithKeyboard(chatID, "Введите номер услуги в заказе, исполнителю которой хотите написать:", ui.CancelOnly())
}

func (a *App) startContactClient(ctx context.Context, chatID int64, ident identitysvc.Identity) {
	a.states.Set(chatID, dialog.State{Action: dialog.RelayClientLineSelect})
	a.sendWithKeyboard(chatID, "Введите номер вашей услуги в заказе, клиенту которой хотите написать:", ui.CancelOnly())
}

func (a *App) startCompleteLine(ctx context.Context, chatID int64, ident identitysvc.Identity) {
	a.states.Set(chatID, dialog.State{Action: dialog.CompleteLineSelect})
	a.sendWithKeyboard(chatID, "Введите номер услуги в заказе, которую вы выполнили:", ui.CancelOnly())
}

func (a *App) handleRelayInput(ctx context.Context, chatID int64, ident identitysvc.Identity, state dialog.State, text string) {
	switch state.Action {
	case dialog.RelayLineSelect:
		a.selectExecutorReceiver(ctx, chatID, ident, text)
	case dialog.RelayClientLineSelect:
		a.selectClientReceiver(ctx, chatID, ident, text)
	case dialog.RelayComposeExecutor:
		a.relayMessage(ctx, chatID, ident, state, text, enums.RoleExecutor)
	case dialog.RelayComposeClient:
		a.relayMessage(ctx, chatID, ident, state, text, enums.RoleClient)
	default:
		a.states.Clear(chatID)
		a.sendText(chatID, msgMenuHint)
	}
}

func (a *App) selectExecutorReceiver(ctx context.Context, chatID int64, ident identitysvc.Identity, text string) {
	lineID, ok := parseID(text)
	if !ok {
		a.sendText(chatID, msgBadNumber)
		return
	}

	executor, line, err := a.orders.ExecutorForLine(ctx, lineID)
	if err != nil {
		if a.replyDomainError(chatID, err) {
			a.states.Clear(chatID)
		}
		return
	}

	// A client can only reach executors working on their own orders.
	if ident.Role == enums.RoleClient {
		client, err := a.orders.ClientForOrder(ctx, line.OrderID)
		if err != nil || client.ID != ident.Client.ID {
			a.states.Clear(chatID)
			a.sendText(chatID, msgNotFound)
			return
		}
	}

	if executor.ChatID == nil {
		a.states.Clear(chatID)
		a.sendText(chatID, "ℹ️ Исполнитель ещё не активировал бота, сообщение доставить нельзя.")
		return
	}

	serviceName := a.serviceName(ctx, line.ServiceID)
	a.states.Update(chatID, func(st *dialog.State) {
		st.Draft.LineID = line.ID
		st.Draft.OrderID = line.OrderID
		st.Draft.Name = serviceName
		st.Draft.ReceiverChatID = *executor.ChatID
		st.Draft.ReceiverHandle = executor.Handle
		st.Action = dialog.RelayComposeExecutor
	})
	a.sendWithKeyboard(chatID, "Введите сообщение для исполнителя:", ui.CancelOnly())
}

func (a *App) selectClientReceiver(ctx context.Context, chatID int64, ident identitysvc.Identity, text string) {
	lineID, ok := parseID(text)
	if !ok {
		a.sendText(chatID, msgBadNumber)
		return
	}

	line, err := a.orders.GetLine(ctx, lineID)
	if err != nil {
		if a.replyDomainError(chatID, err) {
			a.states.Clear(chatID)
		}
		return
	}
	if line.ExecutorID == nil || *line.ExecutorID != ident.Executor.ID {
		a.states.Clear(chatID)
		a.sendText(chatID, msgNotFound)
		return
	}

	client, err := a.orders.ClientForOrder(ctx, line.OrderID)
	if err != nil {
		if a.replyDomainError(chatID, err) {
			a.states.Clear(chatID)
		}
		return
	}
	if client.ChatID == nil {
		a.states.Clear(chatID)
		a.sendText(chatID, "ℹ️ Клиент ещё не активировал бота, сообщение доставить нельзя.")
		return
	}

	serviceName := a.serviceName(ctx, line.ServiceID)
	a.states.Update(chatID, func(st *dialog.State) {
		st.Draft.LineID = line.ID
		st.Draft.OrderID = line.OrderID
		st.Draft.Name = serviceName
		st.Draft.ReceiverChatID = *client.ChatID
		st.Draft.ReceiverHandle = client.Handle
		st.Action = dialog.RelayComposeClient
	})
	a.sendWithKeyboard(chatID, "Введите сообщение для клиента:", ui.CancelOnly())
}

// relayMessage is the final step of both relay flows. Client and executor
// messages are rate limited and run through the content classifier; anything
// flagged goes to manager moderation instead of the receiver. Managers send
// directly.
func (a *App) relayMessage(ctx context.Context, chatID int64, ident identitysvc.Identity, state dialog.State, text string, receiverRole enums.Role) {
	if ident.Role != enums.RoleManager {
		retryAfter, allowed, err := a.limiter.AllowRelay(ctx, chatID)
		if err != nil {
			a.logger.Warn("rate limiter unavailable, allowing relay",
				zap.Int64("chat_id", chatID), zap.Error(err))
		} else if !allowed {
			a.sendText(chatID, fmt.Sprintf("⏳ Слишком много сообщений. Повторите через %d сек.", retryAfter))
			return
		}

		if a.classifier != nil && a.classifier.Suspicious(text) {
			lineID := state.Draft.LineID
			_, err := a.moderation.Flag(ctx, modsvc.FlagInput{
				Text:           text,
				ReceiverChatID: state.Draft.ReceiverChatID,
				ReceiverHandle: state.Draft.ReceiverHandle,
				ReceiverRole:   receiverRole,
				SenderHandle:   identHandle(ident),
				OrderLineID:    &lineID,
			})
			if err != nil && !errors.Is(err, modsvc.ErrNoManagers) {
				a.replyDomainError(chatID, err)
				return
			}
			a.states.Clear(chatID)
			a.sendWithKeyboard(chatID, "🔍 Ваше сообщение отправлено на проверку менеджеру.",
				ui.MainMenuByRole(ident.Role))
			return
		}
	}

	delivery := fmt.Sprintf(
		"📨 Новое сообщение\n\n📋 Заказ: №%d\n📦 Услуга в заказе: №%d\n\n📋 Услуга: %s\n💬 Текст сообщения:\n%s",
		state.Draft.OrderID, state.Draft.LineID, state.Draft.Name, text)
	a.sendText(state.Draft.ReceiverChatID, delivery)

	a.states.Clear(chatID)
	a.sendWithKeyboard(chatID, "✅ Сообщение отправлено.", ui.MainMenuByRole(ident.Role))
}

func (a *App) handleCompleteInput(ctx context.Context, chatID int64, ident identitysvc.Identity, text string) {
	lineID, ok := parseID(text)
	if !ok {
		a.sendText(chatID, msgBadNumber)
		return
	}

	line, err := a.orders.GetLine(ctx, lineID)
	if err != nil {
		if a.replyDomainError(chatID, err) {
			a.states.Clear(chatID)
		}
		return
	}
	if line.ExecutorID == nil || *line.ExecutorID != ident.Executor.ID {
		a.states.Clear(chatID)
		a.sendText(chatID, msgNotFound)
		return
	}

	if _, err := a.orders.CompleteLine(ctx, line.ID); err != nil {
		if a.replyDomainError(chatID, err) {
			a.states.Clear(chatID)
		}
		return
	}

	a.states.Clear(chatID)
	a.sendWithKeyboard(chatID,
		fmt.Sprintf("✅ Услуга №%d отмечена выполненной.", line.ID),
		ui.MainMenuByRole(enums.RoleExecutor))

	if client, err := a.orders.ClientForOrder(ctx, line.OrderID); err == nil && client.ChatID != nil {
		a.sendText(*client.ChatID,
			fmt.Sprintf("🎉 Услуга №%d по вашему заказу №%d выполнена!", line.ID, line.OrderID))
	}
}

// completeModerationEdit consumes the replacement text for a parked edit.
func (a *App) completeModerationEdit(ctx context.Context, chatID int64, ident identitysvc.Identity, pe pendingEdit, text string) {
	_, err := a.moderation.CompleteEdit(ctx, pe.MessageID, text, ident.Manager.ID)
	if err != nil {
		if errors.Is(err, modsvc.ErrAlreadyResolved) {
			a.sendWithKeyboard(chatID, msgAlreadyHandled, ui.MainMenuByRole(enums.RoleManager))
			return
		}
		a.logger.Error("moderation edit failed",
			zap.String("message_id", pe.MessageID), zap.Error(err))
		a.sendWithKeyboard(chatID, msgInternalError, ui.MainMenuByRole(enums.RoleManager))
		return
	}
	a.sendWithKeyboard(chatID, "✅ Исправленное сообщение отправлено получателю.",
		ui.MainMenuByRole(enums.RoleManager))
}

func (a *App) serviceName(ctx context.Context, serviceID int64) string {
	svc, err := a.catalog.GetService(ctx, serviceID)
	if err != nil {
		return "Неизвестная услуга"
	}
	return svc.Name
}

func identHandle(ident identitysvc.Identity) string {
	switch ident.Role {
	case enums.RoleManager:
		return ident.Manager.Handle
	case enums.RoleExecutor:
		return ident.Executor.Handle
	default:
		return ident.Client.Handle
	}
}
