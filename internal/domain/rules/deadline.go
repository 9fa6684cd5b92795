package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Deadlines are interpreted in the product timezone (UTC+3).
var deadlineZone = time.FixedZone("UTC+3", 3*60*60)

const absoluteLayout = "2006-01-02 15:04"

// ParseDeadline accepts relative Russian expressions ("3 часа", "2 дня",
// "1 неделя", "1 месяц" with inflections) or an absolute "2006-01-02 15:04".
func ParseDeadline(raw string, now time.Time) (time.Time, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return time.Time{}, fmt.Errorf("deadline is empty")
	}

	if t, err := time.ParseInLocation(absoluteLayout, text, deadlineZone); err == nil {
		return t, nil
	}

	parts := strings.Fields(text)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("unrecognized deadline %q", raw)
	}

	amount, err := strconv.Atoi(parts[0])
	if err != nil || amount <= 0 {
		return time.Time{}, fmt.Errorf("unrecognized deadline amount %q", parts[0])
	}

	base := now.In(deadlineZone)
	unit := parts[1]
	switch {
	case strings.HasPrefix(unit, "час"):
		return base.Add(time.Duration(amount) * time.Hour), nil
	case strings.HasPrefix(unit, "день") || strings.HasPrefix(unit, "дня") || strings.HasPrefix(unit, "дней"):
		return base.AddDate(0, 0, amount), nil
	case strings.HasPrefix(unit, "недел"):
		return base.AddDate(0, 0, 7*amount), nil
	case strings.HasPrefix(unit, "месяц"):
		return base.AddDate(0, amount, 0), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized deadline unit %q", unit)
}

func FormatDeadline(t time.Time) string {
	return t.In(deadlineZone).Format(absoluteLayout)
}
