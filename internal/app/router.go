package app

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/HanovichS/PixelHub/internal/dialog"
	"github.com/HanovichS/PixelHub/internal/domain/enums"
	pgrepo "github.com/HanovichS/PixelHub/internal/repo/postgres"
	identitysvc "github.com/HanovichS/PixelHub/internal/services/identity"
	orderssvc "github.com/HanovichS/PixelHub/internal/services/orders"
	"github.com/HanovichS/PixelHub/internal/ui"
)

const (
	msgGreeting       = "👋 Привет! Выберите действие:"
	msgChooseAction   = "Выберите действие:"
	msgMenuHint       = "⚠️ Пожалуйста, выберите действие из меню."
	msgDenied         = "⛔ Недостаточно прав."
	msgInternalError  = "⚠️ Произошла непредвиденная ошибка. Попробуйте ещё раз:"
	msgNotFound       = "❌ Не найдено. Проверьте ID и начните заново."
	msgAlreadyExists  = "⚠️ Такая запись уже существует. Введите другое значение:"
	msgBadNumber      = "❌ Ошибка: введите корректный числовой ID."
	msgNoHandle       = "⚠️ Установите username в настройках Telegram, чтобы пользоваться ботом."
	msgStaleCallback  = "⚠️ Действие неактуально."
	msgUnknownAction  = "⚠️ Неизвестное действие."
	msgAlreadyHandled = "⚠️ Сообщение уже обработано другим менеджером."
)

func (a *App) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		a.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil && update.Message.Text != "" {
		a.routeMessage(ctx, update.Message)
	}
}

func isCancel(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "отмена", "cancel", "❌ отмена":
		return true
	}
	return false
}

func (a *App) routeMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	ident, err := a.identity.Resolve(ctx, msg.From.UserName, chatID)
	if err != nil {
		if errors.Is(err, identitysvc.ErrNoHandle) {
			a.sendText(chatID, msgNoHandle)
			return
		}
		a.logger.Error("identity resolution failed", zap.Int64("chat_id", chatID), zap.Error(err))
		a.sendText(chatID, msgInternalError)
		return
	}

	text := strings.TrimSpace(msg.Text)

	// Cancel always wins: every in-flight flow and pending moderation edit
	// is dropped and the root menu is re-rendered.
	if isCancel(text) {
		a.states.Clear(chatID)
		a.clearPendingEdit(chatID)
		a.sendMainMenu(chatID, ident.Role)
		return
	}

	// An unresolved moderation edit consumes the next text message from
	// that manager regardless of any other conversation state.
	if ident.Role == enums.RoleManager {
		if pe, ok := a.takePendingEdit(chatID); ok {
			a.completeModerationEdit(ctx, chatID, ident, pe, text)
			return
		}
	}

	if text == "/start" {
		a.states.Clear(chatID)
		a.sendMainMenu(chatID, ident.Role)
		return
	}

	if state, ok := a.states.Get(chatID); ok && state.Action != dialog.ActionNone {
		a.dispatchState(ctx, chatID, ident, state, text)
		return
	}

	a.routeMenu(ctx, chatID, ident, text)
}

func (a *App) sendMainMenu(chatID int64, role enums.Role) {
	a.sendWithKeyboard(chatID, msgGreeting, ui.MainMenuByRole(role))
}

func (a *App) routeMenu(ctx context.Context, chatID int64, ident identitysvc.Identity, text string) {
	switch text {
	case ui.BtnMakeOrder:
		a.showStorefront(ctx, chatID)
		return
	case ui.BtnActiveOrders:
		a.showActiveOrders(ctx, chatID, ident)
		return
	case ui.BtnContactExecutor:
		if ident.Role == enums.RoleExecutor {
			a.sendText(chatID, msgMenuHint)
			return
		}
		a.startContactExecutor(ctx, chatID, ident)
		return
	case ui.BtnContactClient:
		if ident.Role != enums.RoleExecutor {
			a.sendText(chatID, msgDenied)
			return
		}
		a.startContactClient(ctx, chatID, ident)
		return
	case ui.BtnCompleteOrder:
		if ident.Role != enums.RoleExecutor {
			a.sendText(chatID, msgDenied)
			return
		}
		a.startCompleteLine(ctx, chatID, ident)
		return
	}

	if ident.Role != enums.RoleManager {
		if isAdminButton(text) {
			a.sendText(chatID, msgDenied)
			return
		}
		a.sendText(chatID, msgMenuHint)
		return
	}

	switch text {
	case ui.BtnAdd:
		a.sendWithKeyboard(chatID, msgChooseAction, ui.AddMenu())
	case ui.BtnEdit:
		a.sendWithKeyboard(chatID, msgChooseAction, ui.EditMenu())
	case ui.BtnDel:
		a.sendWithKeyboard(chatID, msgChooseAction, ui.DeleteMenu())
	case ui.BtnView:
		a.sendWithKeyboard(chatID, "Выберите, что хотите посмотреть:", ui.ViewMenu())
	case ui.BtnBack:
		a.sendMainMenu(chatID, ident.Role)

	case ui.BtnAddClient:
		a.startAddClient(chatID)
	case ui.BtnAddExecutor:
		a.startAddExecutor(chatID)
	case ui.BtnAddService:
		a.startAddService(chatID)
	case ui.BtnAddOrder:
		a.startAddOrder(chatID)
	case ui.BtnAddLine:
		a.startAddLine(chatID)

	case ui.BtnEditExecutor:
		a.startEdit(ctx, chatID, dialog.EditExecutorSelect, "Введите ID исполнителя для изменения:")
	case ui.BtnEditService:
		a.startEdit(ctx, chatID, dialog.EditServiceSelect, "Введите ID услуги для изменения:")
	case ui.BtnEditOrder:
		a.startEdit(ctx, chatID, dialog.EditOrderSelect, "Введите ID заказа для изменения:")
	case ui.BtnEditLine:
		a.startEdit(ctx, chatID, dialog.EditLineSelect, "Введите ID услуги в заказе для изменения:")

	case ui.BtnDelClient:
		a.startDelete(ctx, chatID, dialog.DeleteClientSelect, "Введите ID клиента для удаления:")
	case ui.BtnDelExecutor:
		a.startDelete(ctx, chatID, dialog.DeleteExecutorSelect, "Введите ID исполнителя для удаления:")
	case ui.BtnDelService:
		a.startDelete(ctx, chatID, dialog.DeleteServiceSelect, "Введите ID услуги для удаления:")
	case ui.BtnDelOrder:
		a.startDelete(ctx, chatID, dialog.DeleteOrderSelect, "Введите ID заказа для удаления:")
	case ui.BtnDelLine:
		a.startDelete(ctx, chatID, dialog.DeleteLineSelect, "Введите ID услуги в заказе для удаления:")

	case ui.BtnViewClients:
		a.viewClients(ctx, chatID)
	case ui.BtnViewExecutors:
		a.viewExecutors(ctx, chatID)
	case ui.BtnViewServices:
		a.viewServices(ctx, chatID)
	case ui.BtnViewOrders:
		a.viewOrders(ctx, chatID)
	case ui.BtnViewLines:
		a.viewLines(ctx, chatID)

	default:
		a.sendText(chatID, msgMenuHint)
	}
}

func isAdminButton(text string) bool {
	switch text {
	case ui.BtnAdd, ui.BtnEdit, ui.BtnDel, ui.BtnView, ui.BtnBack,
		ui.BtnAddClient, ui.BtnAddExecutor, ui.BtnAddService, ui.BtnAddOrder, ui.BtnAddLine,
		ui.BtnEditService, ui.BtnEditExecutor, ui.BtnEditOrder, ui.BtnEditLine,
		ui.BtnDelClient, ui.BtnDelExecutor, ui.BtnDelService, ui.BtnDelOrder, ui.BtnDelLine,
		ui.BtnViewClients, ui.BtnViewExecutors, ui.BtnViewServices, ui.BtnViewOrders, ui.BtnViewLines:
		return true
	}
	return false
}

func (a *App) dispatchState(ctx context.Context, chatID int64, ident identitysvc.Identity, state dialog.State, text string) {
	action := state.Action
	switch {
	case strings.HasPrefix(string(action), "add_"):
		a.handleAddInput(ctx, chatID, state, text)
	case strings.HasPrefix(string(action), "edit_"):
		a.handleEditInput(ctx, chatID, state, text)
	case strings.HasPrefix(string(action), "delete_"):
		a.handleDeleteInput(ctx, chatID, state, text)
	case strings.HasPrefix(string(action), "relay_"):
		a.handleRelayInput(ctx, chatID, ident, state, text)
	case action == dialog.CompleteLineSelect:
		a.handleCompleteInput(ctx, chatID, ident, text)
	default:
		a.states.Clear(chatID)
		a.sendMainMenu(chatID, ident.Role)
	}
}

// replyDomainError converts a repository or service error into user-visible
// text. Returns true when the flow state must be cleared: not-found class
// errors abort the flow, validation and uniqueness errors keep it for retry.
func (a *App) replyDomainError(chatID int64, err error) bool {
	switch {
	case errors.Is(err, pgrepo.ErrAlreadyExists):
		a.sendText(chatID, msgAlreadyExists)
		return false
	case errors.Is(err, pgrepo.ErrClientNotFound),
		errors.Is(err, pgrepo.ErrExecutorNotFound),
		errors.Is(err, pgrepo.ErrServiceNotFound),
		errors.Is(err, pgrepo.ErrOrderNotFound),
		errors.Is(err, pgrepo.ErrOrderLineNotFound),
		errors.Is(err, pgrepo.ErrManagerNotFound):
		a.sendText(chatID, msgNotFound)
		return true
	case errors.Is(err, orderssvc.ErrLineUnassigned):
		a.sendText(chatID, "ℹ️ У этой услуги ещё нет назначенного исполнителя.")
		return true
	default:
		a.logger.Error("domain operation failed", zap.Int64("chat_id", chatID), zap.Error(err))
		a.sendText(chatID, msgInternalError)
		return false
	}
}
