package ui

import "github.com/HanovichS/PixelHub/internal/domain/enums"

const (
	BtnAdd  = "Добавить"
	BtnEdit = "Изменить"
	BtnDel  = "Удалить"
	BtnView = "Посмотреть"
	BtnBack = "↩️Назад↩️"

	BtnAddClient   = "👤Добавить клиента👤"
	BtnAddExecutor = "👨‍💻Добавить исполнителя👨‍💻"
	BtnAddService  = "📄Добавить услугу📄"
	BtnAddOrder    = "📋Добавить заказ📋"
	BtnAddLine     = "➕Добавить услугу в заказ➕"

	BtnEditService  = "Изменить услугу"
	BtnEditExecutor = "Изменить исполнителя"
	BtnEditOrder    = "Изменить заказ"
	BtnEditLine     = "Изменить услугу в заказе"

	BtnDelClient   = "Удалить клиента"
	BtnDelExecutor = "Удалить исполнителя"
	BtnDelService  = "Удалить услугу"
	BtnDelOrder    = "Удалить заказ"
	BtnDelLine     = "Удалить услугу из заказа"

	BtnViewClients   = "Посмотреть клиентов"
	BtnViewExecutors = "Посмотреть исполнителей"
	BtnViewServices  = "Посмотреть услуги"
	BtnViewOrders    = "Посмотреть заказы"
	BtnViewLines     = "Посмотреть услуги в заказах"

	BtnMakeOrder       = "🛎 Сделать заказ"
	BtnContactExecutor = "✉️ Связаться с исполнителем"
	BtnContactClient   = "✉️ Связаться с клиентом"
	BtnCompleteOrder   = "🛫 Отправить выполненный заказ"
	BtnActiveOrders    = "🪬 Посмотреть активные заказы"

	BtnCancel = "❌ Отмена"
)

// MainMenuByRole is the root reply keyboard for a resolved role.
func MainMenuByRole(role enums.Role) [][]string {
	switch role {
	case enums.RoleManager:
		return [][]string{
			{BtnAdd, BtnEdit},
			{BtnDel, BtnView},
			{BtnContactExecutor},
		}
	case enums.RoleExecutor:
		return [][]string{
			{BtnContactClient},
			{BtnCompleteOrder},
			{BtnActiveOrders},
		}
	default:
		return [][]string{
			{BtnMakeOrder, BtnContactExecutor},
			{BtnActiveOrders},
		}
	}
}

func AddMenu() [][]string {
	return [][]string{
		{BtnAddClient, BtnAddExecutor},
		{BtnAddService, BtnAddOrder},
		{BtnAddLine, BtnBack},
	}
}

func EditMenu() [][]string {
	return [][]string{
		{BtnEditService, BtnEditExecutor},
		{BtnEditOrder, BtnEditLine},
		{BtnBack},
	}
}

func DeleteMenu() [][]string {
	return [][]string{
		{BtnDelClient, BtnDelExecutor},
		{BtnDelService, BtnDelOrder},
		{BtnDelLine, BtnBack},
	}
}

func ViewMenu() [][]string {
	return [][]string{
		{BtnViewClients, BtnViewExecutors},
		{BtnViewServices, BtnViewOrders, BtnViewLines},
		{BtnBack},
	}
}

func CancelOnly() [][]string {
	return [][]string{{BtnCancel}}
}
