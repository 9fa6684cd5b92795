package enums

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleManager  Role = "manager"
	RoleExecutor Role = "executor"
	RoleClient   Role = "client"
)

type Category string

const (
	CategoryMontage Category = "Montage"
	CategoryDesign  Category = "Design"
	CategoryIT      Category = "IT"
	CategoryRecord  Category = "Record"
)

func Categories() []Category {
	return []Category{CategoryMontage, CategoryDesign, CategoryIT, CategoryRecord}
}

func ParseCategory(raw string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(string(c), strings.TrimSpace(raw)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

func ValidDifficulty(level int) bool {
	return level >= MinDifficulty && level <= MaxDifficulty
}

// OrderStatus values are the wire slugs; display labels are Russian.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusInProgress OrderStatus = "in_progress"
	StatusWaiting    OrderStatus = "waiting"
	StatusCompleted  OrderStatus = "completed"
)

func OrderStatuses() []OrderStatus {
	return []OrderStatus{StatusProcessing, StatusInProgress, StatusWaiting, StatusCompleted}
}

var statusLabels = map[OrderStatus]string{
	StatusProcessing: "В обработке",
	StatusInProgress: "Выполняется",
	StatusWaiting:    "Ожидание правок",
	StatusCompleted:  "Завершён",
}

func (s OrderStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func ParseStatusSlug(raw string) (OrderStatus, error) {
	slug := OrderStatus(strings.TrimSpace(raw))
	if _, ok := statusLabels[slug]; !ok {
		return "", fmt.Errorf("unknown status slug %q", raw)
	}
	return slug, nil
}
