package dialog

import (
	"sync"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
)

// Action is the current step of an in-progress multi-step flow for one chat.
type Action string

const (
	ActionNone Action = ""

	AddClientHandle       Action = "add_client_handle"
	AddExecutorHandle     Action = "add_executor_handle"
	AddExecutorCategory   Action = "add_executor_category"
	AddExecutorDifficulty Action = "add_executor_difficulty"
	AddServiceName        Action = "add_service_name"
	AddServiceCategory    Action = "add_service_category"
	AddServicePrice       Action = "add_service_price"
	AddOrderClient        Action = "add_order_client"
	AddLineOrder          Action = "add_line_order"
	AddLineService        Action = "add_line_service"
	AddLineQuantity       Action = "add_line_quantity"
	AddLinePrice          Action = "add_line_price"
	AddLineDeadline       Action = "add_line_deadline"

	EditExecutorSelect Action = "edit_executor_select"
	EditExecutorField  Action = "edit_executor_field"
	EditExecutorHandle Action = "edit_executor_handle"
	EditServiceSelect  Action = "edit_service_select"
	EditServiceField   Action = "edit_service_field"
	EditServiceName    Action = "edit_service_name"
	EditServicePrice   Action = "edit_service_price"
	EditOrderSelect    Action = "edit_order_select"
	EditOrderField     Action = "edit_order_field"
	EditOrderClient    Action = "edit_order_client"
	EditOrderDeadline  Action = "edit_order_deadline"
	EditLineSelect     Action = "edit_line_select"
	EditLineField      Action = "edit_line_field"
	EditLineService    Action = "edit_line_service"
	EditLineQuantity   Action = "edit_line_quantity"
	EditLinePrice      Action = "edit_line_price"
	EditLineExecutor   Action = "edit_line_executor"
	EditLineDeadline   Action = "edit_line_deadline"

	DeleteClientSelect    Action = "delete_client_select"
	DeleteClientConfirm   Action = "delete_client_confirm"
	DeleteExecutorSelect  Action = "delete_executor_select"
	DeleteExecutorConfirm Action = "delete_executor_confirm"
	DeleteServiceSelect   Action = "delete_service_select"
	DeleteServiceConfirm  Action = "delete_service_confirm"
	DeleteOrderSelect     Action = "delete_order_select"
	DeleteOrderConfirm    Action = "delete_order_confirm"
	DeleteLineSelect      Action = "delete_line_select"
	DeleteLineConfirm     Action = "delete_line_confirm"

	RelayLineSelect       Action = "relay_line_select"
	RelayComposeExecutor  Action = "relay_compose_executor"
	RelayClientLineSelect Action = "relay_client_line_select"
	RelayComposeClient    Action = "relay_compose_client"

	CompleteLineSelect Action = "complete_line_select"
)

// ExpectsNumericID reports whether the action waits for a numeric id from
// the user. Non-numeric input self-loops with a validation message.
func (a Action) ExpectsNumericID() bool {
	switch a {
	case AddLineOrder, AddLineService,
		EditExecutorSelect, EditServiceSelect, EditOrderSelect, EditLineSelect, EditLineService, EditLineExecutor,
		DeleteClientSelect, DeleteExecutorSelect, DeleteServiceSelect, DeleteOrderSelect, DeleteLineSelect,
		RelayLineSelect, RelayClientLineSelect, CompleteLineSelect:
		return true
	}
	return false
}

// Draft accumulates the partial entity built across flow steps.
type Draft struct {
	Handle         string
	Name           string
	Category       enums.Category
	Difficulty     int
	OrderID        int64
	ServiceID      int64
	LineID         int64
	TargetID       int64
	Quantity       int
	Price          float64
	ReceiverChatID int64
	ReceiverHandle string
}

type State struct {
	Action Action
	Draft  Draft
}

// Store is the single keyed conversation state store. States are in-memory
// only and dropped on restart; committed entities are unaffected.
type Store struct {
	mu     sync.Mutex
	states map[int64]State
}

func NewStore() *Store {
	return &Store{states: make(map[int64]State)}
}

func (s *Store) Get(chatID int64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatID]
	return st, ok
}

func (s *Store) Set(chatID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = st
}

func (s *Store) Update(chatID int64, fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[chatID]
	fn(&st)
	s.states[chatID] = st
}

func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
}
