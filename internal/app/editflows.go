package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HanovichS/PixelHub/internal/dialog"
	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/rules"
	"github.com/HanovichS/PixelHub/internal/ui"
)

// Field selection inside an edit flow is plain reply-keyboard text; only
// enum values (category, difficulty, status) go through inline callbacks.
const (
	fieldHandle     = "Ник"
	fieldName       = "Название"
	fieldCategory   = "Категория"
	fieldDifficulty = "Сложность"
	fieldPrice      = "Цена"
	fieldClient     = "Клиент"
	fieldStatus     = "Статус"
	fieldDeadline   = "Срок"
	fieldService    = "Услуга"
	fieldQuantity   = "Количество"
	fieldExecutor   = "Исполнитель"
)

func (a *App) startEdit(ctx context.Context, chatID int64, action dialog.Action, prompt string) {
	a.states.Set(chatID, dialog.State{Action: action})
	a.sendWithKeyboard(chatID, prompt, ui.CancelOnly())
}

func (a *App) handleEditInput(ctx context.Context, chatID int64, state dialog.State, text string) {
	switch state.Action {
	case dialog.EditExecutorSelect:
		a.selectEditTarget(ctx, chatID, text, dialog.EditExecutorField,
			func(id int64) error { _, err := a.catalog.GetExecutor(ctx, id); return err },
			[][]string{{fieldHandle, fieldCategory}, {fieldDifficulty, ui.BtnCancel}})

	case dialog.EditExecutorField:
		switch text {
		case fieldHandle:
			a.advanceEdit(chatID, dialog.EditExecutorHandle, "Введите новый @username:")
		case fieldCategory:
			a.sendInline(chatID, "Выберите новую категорию:", categoryRows("edit_executor_category_"))
		case fieldDifficulty:
			a.sendInline(chatID, "Выберите новую сложность:", difficultyRows("edit_executor_difficulty_"))
		default:
			a.sendText(chatID, msgMenuHint)
		}

	case dialog.EditExecutorHandle:
		a.applyEdit(chatID, a.catalog.RenameExecutor(ctx, state.Draft.TargetID, text))

	case dialog.EditServiceSelect:
		a.selectEditTarget(ctx, chatID, text, dialog.EditServiceField,
			func(id int64) error { _, err := a.catalog.GetService(ctx, id); return err },
			[][]string{{fieldName, fieldCategory}, {fieldPrice, ui.BtnCancel}})

	case dialog.EditServiceField:
		switch text {
		case fieldName:
			a.advanceEdit(chatID, dialog.EditServiceName, "Введите новое название услуги:")
		case fieldCategory:
			a.sendInline(chatID, "Выберите новую категорию:", categoryRows("edit_service_category_"))
		case fieldPrice:
			a.advanceEdit(chatID, dialog.EditServicePrice, "Введите новую цену (USD):")
		default:
			a.sendText(chatID, msgMenuHint)
		}

	case dialog.EditServiceName:
		a.applyEdit(chatID, a.catalog.RenameService(ctx, state.Draft.TargetID, text))

	case dialog.EditServicePrice:
		price, ok := parsePrice(text)
		if !ok {
			a.sendText(chatID, "❌ Введите корректную цену (число, не меньше 0):")
			return
		}
		a.applyEdit(chatID, a.catalog.RepriceService(ctx, state.Draft.TargetID, price))

	case dialog.EditOrderSelect:
		a.selectEditTarget(ctx, chatID, text, dialog.EditOrderField,
			func(id int64) error { _, err := a.orders.Get(ctx, id); return err },
			[][]string{{fieldClient, fieldStatus}, {fieldDeadline, ui.BtnCancel}})

	case dialog.EditOrderField:
		switch text {
		case fieldClient:
			a.advanceEdit(chatID, dialog.EditOrderClient, "Введите @username нового клиента:")
		case fieldStatus:
			a.sendInline(chatID, "Выберите новый статус:", statusRows("edit_order_status_"))
		case fieldDeadline:
			a.advanceEdit(chatID, dialog.EditOrderDeadline, msgDeadlineHint)
		default:
			a.sendText(chatID, msgMenuHint)
		}

	case dialog.EditOrderClient:
		handle := strings.TrimPrefix(strings.TrimSpace(text), "@")
		a.applyEdit(chatID, a.orders.ReassignClient(ctx, state.Draft.TargetID, handle))

	case dialog.EditOrderDeadline:
		deadline, err := rules.ParseDeadline(text, time.Now())
		if err != nil {
			a.sendText(chatID, "❌ Не удалось распознать срок. "+msgDeadlineHint)
			return
		}
		a.applyEdit(chatID, a.orders.SetCompletion(ctx, state.Draft.TargetID, deadline))

	case dialog.EditLineSelect:
		a.selectEditTarget(ctx, chatID, text, dialog.EditLineField,
			func(id int64) error { _, err := a.orders.GetLine(ctx, id); return err },
			[][]string{
				{fieldService, fieldQuantity, fieldPrice},
				{fieldExecutor, fieldStatus, fieldDeadline},
				{ui.BtnCancel},
			})

	case dialog.EditLineField:
		switch text {
		case fieldService:
			a.advanceEdit(chatID, dialog.EditLineService, "Введите ID новой услуги:")
		case fieldQuantity:
			a.advanceEdit(chatID, dialog.EditLineQuantity, "Введите новое количество:")
		case fieldPrice:
			a.advanceEdit(chatID, dialog.EditLinePrice, "Введите новую цену за единицу (USD):")
		case fieldExecutor:
			a.advanceEdit(chatID, dialog.EditLineExecutor, "Введите ID исполнителя:")
		case fieldStatus:
			a.sendInline(chatID, "Выберите новый статус:", statusRows("edit_service_in_order_status_"))
		case fieldDeadline:
			a.advanceEdit(chatID, dialog.EditLineDeadline, msgDeadlineHint)
		default:
			a.sendText(chatID, msgMenuHint)
		}

	case dialog.EditLineService:
		id, ok := parseID(text)
		if !ok {
			a.sendText(chatID, msgBadNumber)
			return
		}
		a.applyEdit(chatID, a.orders.SwapLineService(ctx, state.Draft.TargetID, id))

	case dialog.EditLineQuantity:
		quantity, ok := parseQuantity(text)
		if !ok {
			a.sendText(chatID, "❌ Введите целое количество больше нуля:")
			return
		}
		a.applyEdit(chatID, a.orders.SetLineQuantity(ctx, state.Draft.TargetID, quantity))

	case dialog.EditLinePrice:
		price, ok := parsePrice(text)
		if !ok {
			a.sendText(chatID, "❌ Введите корректную цену (число, не меньше 0):")
			return
		}
		a.applyEdit(chatID, a.orders.SetLinePrice(ctx, state.Draft.TargetID, price))

	case dialog.EditLineExecutor:
		id, ok := parseID(text)
		if !ok {
			a.sendText(chatID, msgBadNumber)
			return
		}
		a.applyEdit(chatID, a.orders.AssignLineExecutor(ctx, state.Draft.TargetID, id))

	case dialog.EditLineDeadline:
		deadline, err := rules.ParseDeadline(text, time.Now())
		if err != nil {
			a.sendText(chatID, "❌ Не удалось распознать срок. "+msgDeadlineHint)
			return
		}
		a.applyEdit(chatID, a.orders.SetLineCompletion(ctx, state.Draft.TargetID, deadline))

	default:
		a.states.Clear(chatID)
		a.sendText(chatID, msgMenuHint)
	}
}

// selectEditTarget validates the typed id, stores it and shows the field menu.
func (a *App) selectEditTarget(ctx context.Context, chatID int64, text string, next dialog.Action, exists func(int64) error, fields [][]string) {
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
		st.Action = next
	})
	a.sendWithKeyboard(chatID, fmt.Sprintf("Что изменить у записи №%d?", id), fields)
}

func (a *App) advanceEdit(chatID int64, next dialog.Action, prompt string) {
	a.states.Update(chatID, func(st *dialog.State) {
		st.Action = next
	})
	a.sendWithKeyboard(chatID, prompt, ui.CancelOnly())
}

// applyEdit finishes a single-field edit: success clears the flow, errors
// follow the shared retry-or-abort policy.
func (a *App) applyEdit(chatID int64, err error) {
	if err != nil {
		if a.replyDomainError(chatID, err) {
			a.states.Clear(chatID)
		}
		return
	}
	a.states.Clear(chatID)
	a.sendWithKeyboard(chatID, "✅ Изменения сохранены.", ui.MainMenuByRole(enums.RoleManager))
}

func parseQuantity(text string) (int, bool) {
	id, ok := parseID(text)
	if !ok || id > 1<<30 {
		return 0, false
	}
	return int(id), true
}
