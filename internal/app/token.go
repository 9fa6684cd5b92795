package app

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
)

// Callback tokens are underscore-delimited with fixed arity per family.
// Parsing is strict: wrong arity, non-numeric ids, invalid UUIDs and unknown
// enum slugs are all rejected instead of partially matched.

type callbackKind int

const (
	cbUnknown callbackKind = iota
	cbModeration
	cbCategory
	cbServiceCategory
	cbDifficulty
	cbConfirmDelete
	cbCancelDelete
	cbEditServiceCategory
	cbEditExecutorCategory
	cbEditExecutorDifficulty
	cbEditOrderStatus
	cbEditLineStatus
)

type moderationAction string

const (
	modApprove moderationAction = "approve"
	modEdit    moderationAction = "edit"
	modDelete  moderationAction = "delete"
)

type callbackToken struct {
	kind callbackKind

	modAction      moderationAction
	receiverChatID int64
	messageID      string

	category   enums.Category
	difficulty int
	status     enums.OrderStatus
}

func parseCallbackToken(data string) (callbackToken, bool) {
	switch data {
	case "confirm_delete":
		return callbackToken{kind: cbConfirmDelete}, true
	case "cancel_delete":
		return callbackToken{kind: cbCancelDelete}, true
	}

	// Longer edit_* families first: a moderation edit token also starts
	// with "edit_" but carries a numeric chat id and a UUID.
	if rest, ok := strings.CutPrefix(data, "edit_service_in_order_status_"); ok {
		return statusToken(cbEditLineStatus, rest)
	}
	if rest, ok := strings.CutPrefix(data, "edit_order_status_"); ok {
		return statusToken(cbEditOrderStatus, rest)
	}
	if rest, ok := strings.CutPrefix(data, "edit_executor_difficulty_"); ok {
		return difficultyToken(cbEditExecutorDifficulty, rest)
	}
	if rest, ok := strings.CutPrefix(data, "edit_executor_category_"); ok {
		return categoryToken(cbEditExecutorCategory, rest)
	}
	if rest, ok := strings.CutPrefix(data, "edit_service_category_"); ok {
		return categoryToken(cbEditServiceCategory, rest)
	}

	if tok, ok := parseModerationToken(data); ok {
		return tok, true
	}

	if rest, ok := strings.CutPrefix(data, "service_category_"); ok {
		return categoryToken(cbServiceCategory, rest)
	}
	if rest, ok := strings.CutPrefix(data, "category_"); ok {
		return categoryToken(cbCategory, rest)
	}
	if rest, ok := strings.CutPrefix(data, "difficulty_"); ok {
		return difficultyToken(cbDifficulty, rest)
	}

	return callbackToken{}, false
}

// parseModerationToken handles approve_<chatId>_<uuid>, edit_<chatId>_<uuid>
// and delete_<chatId>_<uuid>: split on "_" with at most two cuts, the UUID
// itself never contains an underscore.
func parseModerationToken(data string) (callbackToken, bool) {
	parts := strings.SplitN(data, "_", 3)
	if len(parts) != 3 {
		return callbackToken{}, false
	}

	action := moderationAction(parts[0])
	switch action {
	case modApprove, modEdit, modDelete:
	default:
		return callbackToken{}, false
	}

	chatID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return callbackToken{}, false
	}

	if _, err := uuid.Parse(parts[2]); err != nil {
		return callbackToken{}, false
	}

	return callbackToken{
		kind:           cbModeration,
		modAction:      action,
		receiverChatID: chatID,
		messageID:      parts[2],
	}, true
}

func categoryToken(kind callbackKind, raw string) (callbackToken, bool) {
	category, err := enums.ParseCategory(raw)
	if err != nil {
		return callbackToken{}, false
	}
	return callbackToken{kind: kind, category: category}, true
}

func difficultyToken(kind callbackKind, raw string) (callbackToken, bool) {
	level, err := strconv.Atoi(raw)
	if err != nil || !enums.ValidDifficulty(level) {
		return callbackToken{}, false
	}
	return callbackToken{kind: kind, difficulty: level}, true
}

func statusToken(kind callbackKind, raw string) (callbackToken, bool) {
	status, err := enums.ParseStatusSlug(raw)
	if err != nil {
		return callbackToken{}, false
	}
	return callbackToken{kind: kind, status: status}, true
}
