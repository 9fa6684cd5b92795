package model

import (
	"time"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
)

type Client struct {
	ID           int64
	Handle       string
	ChatID       *int64
	PasswordHash string
}

type Executor struct {
	ID           int64
	Handle       string
	ChatID       *int64
	Category     enums.Category
	Difficulty   int
	PasswordHash string
}

type Manager struct {
	ID           int64
	Handle       string
	ChatID       *int64
	PasswordHash string
}

type Service struct {
	ID       int64
	Name     string
	Category enums.Category
	MinPrice float64
}

type Order struct {
	ID                  int64
	ClientID            int64
	CreatedAt           time.Time
	EstimatedCompletion *time.Time
	Status              enums.OrderStatus
	Price               float64
}

// OrderLine is one service instance attached to an order, with its own
// executor, price and deadline independent of sibling lines.
type OrderLine struct {
	ID                  int64
	OrderID             int64
	ServiceID           int64
	ExecutorID          *int64
	Quantity            int
	UnitPrice           float64
	CreatedAt           time.Time
	EstimatedCompletion *time.Time
	Status              enums.OrderStatus
}

// LineContext is the naming context of one order line used in message
// headers: parent order id plus the catalog name of the line's service.
type LineContext struct {
	LineID      int64
	OrderID     int64
	ServiceName string
}

type Resolution struct {
	Action      string    `json:"action"`
	ModeratorID int64     `json:"moderator_id"`
	NewText     string    `json:"new_text,omitempty"`
	At          time.Time `json:"at"`
}

type ModerationRecord struct {
	MessageID      string
	Text           string
	ReceiverChatID int64
	ReceiverHandle string
	ReceiverRole   enums.Role
	SenderHandle   string
	OrderLineID    *int64
	Processed      bool
	CreatedAt      time.Time
	ResolutionLog  []Resolution
}
