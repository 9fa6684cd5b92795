package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/HanovichS/PixelHub/internal/domain/model"
	"github.com/HanovichS/PixelHub/internal/domain/rules"
	"github.com/HanovichS/PixelHub/internal/services/catalog"
)

// MaxMessageLength is the transport limit for one outbound message.
const MaxMessageLength = 4096

// SplitByLength chunks long output so every piece fits the transport limit.
func SplitByLength(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	remaining := text
	for len(remaining) > limit {
		cut := strings.LastIndex(remaining[:limit], "\n")
		if cut <= 0 {
			cut = limit
		}
		parts = append(parts, remaining[:cut])
		remaining = strings.TrimPrefix(remaining[cut:], "\n")
	}
	if remaining != "" {
		parts = append(parts, remaining)
	}

	return parts
}

// Storefront renders the client-facing catalog grouped by category with
// prices converted to the display currencies.
func Storefront(groups []catalog.CategoryGroup, conv rules.Converter, managerContact string) string {
	var b strings.Builder
	b.WriteString("🛎 Чтобы сделать заказ, свяжитесь с менеджером:\n")
	b.WriteString("👉 " + managerContact + "\n\n")
	b.WriteString("📋 Наши услуги:\n\n")

	for _, group := range groups {
		b.WriteString(string(group.Category) + ":\n")
		for _, svc := range group.Services {
			b.WriteString(fmt.Sprintf("• %s - %s\n", svc.Name, conv.FormatPrice(svc.MinPrice)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nПри обращении к менеджеру укажите:\n")
	b.WriteString("• Какие услуги вас интересуют\n")
	b.WriteString("• Желаемые сроки выполнения\n")
	b.WriteString("• Любые особые требования")

	return b.String()
}

func ClientList(clients []model.Client) string {
	if len(clients) == 0 {
		return "ℹ️ Клиентов пока нет."
	}

	var b strings.Builder
	b.WriteString("👤 Клиенты:\n\n")
	for _, c := range clients {
		b.WriteString(fmt.Sprintf("ID %d — @%s%s\n", c.ID, c.Handle, chatBound(c.ChatID)))
	}
	return b.String()
}

func ExecutorList(executors []model.Executor) string {
	if len(executors) == 0 {
		return "ℹ️ Исполнителей пока нет."
	}

	var b strings.Builder
	b.WriteString("👨‍💻 Исполнители:\n\n")
	for _, e := range executors {
		b.WriteString(fmt.Sprintf("ID %d — @%s, категория %s, сложность %d%s\n",
			e.ID, e.Handle, e.Category, e.Difficulty, chatBound(e.ChatID)))
	}
	return b.String()
}

func ServiceList(services []model.Service) string {
	if len(services) == 0 {
		return "ℹ️ Услуг пока нет."
	}

	var b strings.Builder
	b.WriteString("📄 Услуги:\n\n")
	for _, s := range services {
		b.WriteString(fmt.Sprintf("ID %d — %s (%s), от %.0f USD\n", s.ID, s.Name, s.Category, s.MinPrice))
	}
	return b.String()
}

func OrderList(orders []model.Order) string {
	if len(orders) == 0 {
		return "ℹ️ Заказов пока нет."
	}

	var b strings.Builder
	b.WriteString("📋 Заказы:\n\n")
	for _, o := range orders {
		b.WriteString(fmt.Sprintf("Заказ №%d — клиент %d, статус: %s, сумма: %.0f USD, срок: %s\n",
			o.ID, o.ClientID, o.Status.Label(), o.Price, completion(o.EstimatedCompletion)))
	}
	return b.String()
}

func LineList(lines []model.OrderLine) string {
	if len(lines) == 0 {
		return "ℹ️ Услуг в заказах пока нет."
	}

	var b strings.Builder
	b.WriteString("📦 Услуги в заказах:\n\n")
	for _, l := range lines {
		executor := "не назначен"
		if l.ExecutorID != nil {
			executor = fmt.Sprintf("%d", *l.ExecutorID)
		}
		b.WriteString(fmt.Sprintf("№%d — заказ %d, услуга %d, кол-во %d, цена %.0f USD, исполнитель: %s, статус: %s, срок: %s\n",
			l.ID, l.OrderID, l.ServiceID, l.Quantity, l.UnitPrice, executor, l.Status.Label(), completion(l.EstimatedCompletion)))
	}
	return b.String()
}

func chatBound(chatID *int64) string {
	if chatID == nil {
		return " (не активирован)"
	}
	return ""
}

func completion(t *time.Time) string {
	if t == nil {
		return "не задан"
	}
	return rules.FormatDeadline(*t)
}
