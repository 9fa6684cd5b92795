package app

import (
	"context"
	"fmt"

	"github.com/HanovichS/PixelHub/internal/dialog"
	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/ui"
)

func (a *App) startDelete(ctx context.Context, chatID int64, action dialog.Action, prompt string) {
	a.states.Set(chatID, dialog.State{Action: action})
	a.sendWithKeyboard(chatID, prompt, ui.CancelOnly())
}

// handleDeleteInput covers the typed half of the two-phase delete: the id is
// validated here, the destructive step waits for the inline confirmation.
func (a *App) handleDeleteInput(ctx context.Context, chatID int64, state dialog.State, text string) {
	var (
		confirm dialog.Action
		label   string
		exists  func(int64) error
	)

	switch state.Action {
	case dialog.DeleteClientSelect:
		confirm, label = dialog.DeleteClientConfirm, "клиента"
		exists = func(id int64) error { _, err := a.catalog.GetClient(ctx, id); return err }
	case dialog.DeleteExecutorSelect:
		confirm, label = dialog.DeleteExecutorConfirm, "исполнителя"
		exists = func(id int64) error { _, err := a.catalog.GetExecutor(ctx, id); return err }
	case dialog.DeleteServiceSelect:
		confirm, label = dialog.DeleteServiceConfirm, "услугу"
		exists = func(id int64) error { _, err := a.catalog.GetService(ctx, id); return err }
	case dialog.DeleteOrderSelect:
		confirm, label = dialog.DeleteOrderConfirm, "заказ"
		exists = func(id int64) error { _, err := a.orders.Get(ctx, id); return err }
	case dialog.DeleteLineSelect:
		confirm, label = dialog.DeleteLineConfirm, "услугу в заказе"
		exists = func(id int64) error { _, err := a.orders.GetLine(ctx, id); return err }

	case dialog.DeleteClientConfirm, dialog.DeleteExecutorConfirm,
		dialog.DeleteServiceConfirm, dialog.DeleteOrderConfirm, dialog.DeleteLineConfirm:
		a.sendText(chatID, "⚠️ Подтвердите удаление кнопкой под сообщением.")
		return

	default:
		a.states.Clear(chatID)
		a.sendText(chatID, msgMenuHint)
		return
	}

	id, ok := parseID(text)
	if !ok {
		a.sendText(chatID, msgBadNumber)
		return
	}
	if err := exists(id); err != nil {
		if a.replyDomainError(chatID, err) {
			a.states.Clear(chatID)
		}
		return
	}

	a.states.Update(chatID, func(st *dialog.State) {
		st.Draft.TargetID = id
		st.Action = confirm
	})
	a.sendInline(chatID,
		fmt.Sprintf("⚠️ Вы уверены, что хотите удалить %s №%d?", label, id),
		confirmDeleteRows())
}

// handleDeleteDecision is the callback half of the two-phase delete.
func (a *App) handleDeleteDecision(ctx context.Context, chatID int64, callbackID string, state dialog.State, confirmed bool) {
	var remove func(int64) error

	switch state.Action {
	case dialog.DeleteClientConfirm:
		remove = func(id int64) error { return a.catalog.DeleteClient(ctx, id) }
	case dialog.DeleteExecutorConfirm:
		remove = func(id int64) error { return a.catalog.DeleteExecutor(ctx, id) }
	case dialog.DeleteServiceConfirm:
		remove = func(id int64) error { return a.catalog.DeleteService(ctx, id) }
	case dialog.DeleteOrderConfirm:
		remove = func(id int64) error { return a.orders.Delete(ctx, id) }
	case dialog.DeleteLineConfirm:
		remove = func(id int64) error { return a.orders.DeleteLine(ctx, id) }
	default:
		a.answerCallback(callbackID, msgStaleCallback)
		return
	}

	if !confirmed {
		a.states.Clear(chatID)
		a.answerCallback(callbackID, "")
		a.sendWithKeyboard(chatID, "❎ Удаление отменено.", ui.MainMenuByRole(enums.RoleManager))
		return
	}

	if err := remove(state.Draft.TargetID); err != nil {
		a.answerCallback(callbackID, "")
		if a.replyDomainError(chatID, err) {
			a.states.Clear(chatID)
		}
		return
	}

	a.states.Clear(chatID)
	a.answerCallback(callbackID, "")
	a.sendWithKeyboard(chatID,
		fmt.Sprintf("🗑 Запись №%d удалена.", state.Draft.TargetID),
		ui.MainMenuByRole(enums.RoleManager))
}
