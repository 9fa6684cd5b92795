package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/HanovichS/PixelHub/internal/dialog"
	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/rules"
	orderssvc "github.com/HanovichS/PixelHub/internal/services/orders"
	"github.com/HanovichS/PixelHub/internal/ui"
)

const msgDeadlineHint = "Введите срок выполнения (например: 3 часа, 2 дня, 1 неделя, 1 месяц или 2026-09-01 18:00):"

func (a *App) startAddClient(chatID int64) {
	a.states.Set(chatID, dialog.State{Action: dialog.AddClientHandle})
	a.sendWithKeyboard(chatID, "Введите @username клиента:", ui.CancelOnly())
}

func (a *App) startAddExecutor(chatID int64) {
	a.states.Set(chatID, dialog.State{Action: dialog.AddExecutorHandle})
	a.sendWithKeyboard(chatID, "Введите @username исполнителя:", ui.CancelOnly())
}

func (a *App) startAddService(chatID int64) {
	a.states.Set(chatID, dialog.State{Action: dialog.AddServiceName})
	a.sendWithKeyboard(chatID, "Введите название услуги:", ui.CancelOnly())
}

func (a *App) startAddOrder(chatID int64) {
	a.states.Set(chatID, dialog.State{Action: dialog.AddOrderClient})
	a.sendWithKeyboard(chatID, "Введите @username клиента для нового заказа:", ui.CancelOnly())
}

func (a *App) startAddLine(chatID int64) {
	a.states.Set(chatID, dialog.State{Action: dialog.AddLineOrder})
	a.sendWithKeyboard(chatID, "Введите ID заказа:", ui.CancelOnly())
}

func (a *App) handleAddInput(ctx context.Context, chatID int64, state dialog.State, text string) {
	switch state.Action {
	case dialog.AddClientHandle:
		client, err := a.catalog.AddClient(ctx, text, a.defaultHash)
		if err != nil {
			if a.replyDomainError(chatID, err) {
				a.states.Clear(chatID)
			}
			return
		}
		a.states.Clear(chatID)
		a.sendWithKeyboard(chatID,
			fmt.Sprintf("✅ Клиент @%s добавлен (ID %d).", client.Handle, client.ID),
			ui.MainMenuByRole(enums.RoleManager))

	case dialog.AddExecutorHandle:
		handle := strings.TrimPrefix(strings.TrimSpace(text), "@")
		if handle == "" {
			a.sendText(chatID, "❌ Введите непустой @username:")
			return
		}
		a.states.Update(chatID, func(st *dialog.State) {
			st.Draft.Handle = handle
			st.Action = dialog.AddExecutorCategory
		})
		a.sendInline(chatID, "Выберите категорию исполнителя:", categoryRows("category_"))

	case dialog.AddExecutorCategory, dialog.AddExecutorDifficulty,
		dialog.AddServiceCategory:
		a.sendText(chatID, "⚠️ Выберите вариант кнопкой под сообщением.")

	case dialog.AddServiceName:
		name := strings.TrimSpace(text)
		if name == "" {
			a.sendText(chatID, "❌ Введите непустое название услуги:")
			return
		}
		a.states.Update(chatID, func(st *dialog.State) {
			st.Draft.Name = name
			st.Action = dialog.AddServiceCategory
		})
		a.sendInline(chatID, "Выберите категорию услуги:", categoryRows("service_category_"))

	case dialog.AddServicePrice:
		price, ok := parsePrice(text)
		if !ok {
			a.sendText(chatID, "❌ Введите корректную цену (число, не меньше 0):")
			return
		}
		svc, err := a.catalog.AddService(ctx, state.Draft.Name, state.Draft.Category, price)
		if err != nil {
			if a.replyDomainError(chatID, err) {
				a.states.Clear(chatID)
			}
			return
		}
		a.states.Clear(chatID)
		a.sendWithKeyboard(chatID,
			fmt.Sprintf("✅ Услуга «%s» добавлена (ID %d).", svc.Name, svc.ID),
			ui.MainMenuByRole(enums.RoleManager))

	case dialog.AddOrderClient:
		handle := strings.TrimPrefix(strings.TrimSpace(text), "@")
		order, err := a.orders.CreateForClientHandle(ctx, handle)
		if err != nil {
			if a.replyDomainError(chatID, err) {
				a.states.Clear(chatID)
			}
			return
		}
		a.states.Clear(chatID)
		a.sendWithKeyboard(chatID,
			fmt.Sprintf("✅ Заказ №%d создан для клиента @%s.", order.ID, handle),
			ui.MainMenuByRole(enums.RoleManager))

	case dialog.AddLineOrder:
		id, ok := parseID(text)
		if !ok {
			a.sendText(chatID, msgBadNumber)
			return
		}
		if _, err := a.orders.Get(ctx, id); err != nil {
			if a.replyDomainError(chatID, err) {
				a.states.Clear(chatID)
			}
			return
		}
		a.states.Update(chatID, func(st *dialog.State) {
			st.Draft.OrderID = id
			st.Action = dialog.AddLineService
		})
		a.sendText(chatID, "Введите ID услуги:")

	case dialog.AddLineService:
		id, ok := parseID(text)
		if !ok {
			a.sendText(chatID, msgBadNumber)
			return
		}
		if _, err := a.catalog.GetService(ctx, id); err != nil {
			if a.replyDomainError(chatID, err) {
				a.states.Clear(chatID)
			}
			return
		}
		a.states.Update(chatID, func(st *dialog.State) {
			st.Draft.ServiceID = id
			st.Action = dialog.AddLineQuantity
		})
		a.sendText(chatID, "Введите количество:")

	case dialog.AddLineQuantity:
		quantity, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || quantity <= 0 {
			a.sendText(chatID, "❌ Введите целое количество больше нуля:")
			return
		}
		a.states.Update(chatID, func(st *dialog.State) {
			st.Draft.Quantity = quantity
			st.Action = dialog.AddLinePrice
		})
		a.sendText(chatID, "Введите цену за единицу (USD):")

	case dialog.AddLinePrice:
		price, ok := parsePrice(text)
		if !ok {
			a.sendText(chatID, "❌ Введите корректную цену (число, не меньше 0):")
			return
		}
		a.states.Update(chatID, func(st *dialog.State) {
			st.Draft.Price = price
			st.Action = dialog.AddLineDeadline
		})
		a.sendText(chatID, msgDeadlineHint)

	case dialog.AddLineDeadline:
		deadline, err := rules.ParseDeadline(text, time.Now())
		if err != nil {
			a.sendText(chatID, "❌ Не удалось распознать срок. "+msgDeadlineHint)
			return
		}
		line, err := a.orders.AddLine(ctx, orderssvc.AddLineInput{
			OrderID:             state.Draft.OrderID,
			ServiceID:           state.Draft.ServiceID,
			Quantity:            state.Draft.Quantity,
			UnitPrice:           state.Draft.Price,
			EstimatedCompletion: &deadline,
		})
		if err != nil {
			if a.replyDomainError(chatID, err) {
				a.states.Clear(chatID)
			}
			return
		}
		a.states.Clear(chatID)
		a.sendWithKeyboard(chatID,
			fmt.Sprintf("✅ Услуга №%d добавлена в заказ №%d.", line.ID, line.OrderID),
			ui.MainMenuByRole(enums.RoleManager))

	default:
		a.states.Clear(chatID)
		a.sendText(chatID, msgMenuHint)
	}
}

func parseID(text string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parsePrice(text string) (float64, bool) {
	price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}
