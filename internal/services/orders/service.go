package orders

import (
	"context"
	"errors"
	"time"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/model"
)

var ErrLineUnassigned = errors.New("order line has no executor assigned")

type OrderRepo interface {
	Create(context.Context, int64) (model.Order, error)
	GetByID(context.Context, int64) (model.Order, error)
	List(context.Context) ([]model.Order, error)
	ListByClient(context.Context, int64) ([]model.Order, error)
	UpdateClient(context.Context, int64, int64) error
	UpdateStatus(context.Context, int64, enums.OrderStatus) error
	UpdateCompletion(context.Context, int64, time.Time) error
	Delete(context.Context, int64) error
}

type LineRepo interface {
	Create(context.Context, model.OrderLine) (model.OrderLine, error)
	GetByID(context.Context, int64) (model.OrderLine, error)
	List(context.Context) ([]model.OrderLine, error)
	ListByOrder(context.Context, int64) ([]model.OrderLine, error)
	ListByExecutor(context.Context, int64) ([]model.OrderLine, error)
	UpdateService(context.Context, int64, int64) error
	UpdateQuantity(context.Context, int64, int) error
	UpdatePrice(context.Context, int64, float64) error
	UpdateExecutor(context.Context, int64, int64) error
	UpdateCompletion(context.Context, int64, time.Time) error
	UpdateStatus(context.Context, int64, enums.OrderStatus) error
	Delete(context.Context, int64) error
}

type ClientLookup interface {
	FindByHandle(context.Context, string) (model.Client, error)
	GetByID(context.Context, int64) (model.Client, error)
}

type ServiceLookup interface {
	GetByID(context.Context, int64) (model.Service, error)
}

type ExecutorLookup interface {
	GetByID(context.Context, int64) (model.Executor, error)
}

// Service owns order and order line lifecycle. Line mutations go through the
// repo's transactional recompute, so order price and completion stay derived.
type Service struct {
	orders    OrderRepo
	lines     LineRepo
	clients   ClientLookup
	catalog   ServiceLookup
	executors ExecutorLookup
}

func NewService(orders OrderRepo, lines LineRepo, clients ClientLookup, catalog ServiceLookup, executors ExecutorLookup) *Service {
	return &Service{
		orders:    orders,
		lines:     lines,
		clients:   clients,
		catalog:   catalog,
		executors: executors,
	}
}

func (s *Service) CreateForClientHandle(ctx context.Context, handle string) (model.Order, error) {
	client, err := s.clients.FindByHandle(ctx, handle)
	if err != nil {
		return model.Order{}, err
	}
	return s.orders.Create(ctx, client.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (model.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]model.Order, error) {
	return s.orders.List(ctx)
}

func (s *Service) ListForClient(ctx context.Context, clientID int64) ([]model.Order, error) {
	return s.orders.ListByClient(ctx, clientID)
}

func (s *Service) ReassignClient(ctx context.Context, orderID int64, handle string) error {
	client, err := s.clients.FindByHandle(ctx, handle)
	if err != nil {
		return err
	}
	return s.orders.UpdateClient(ctx, orderID, client.ID)
}

func (s *Service) SetStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error {
	return s.orders.UpdateStatus(ctx, orderID, status)
}

func (s *Service) SetCompletion(ctx context.Context, orderID int64, completion time.Time) error {
	return s.orders.UpdateCompletion(ctx, orderID, completion)
}

func (s *Service) Delete(ctx context.Context, orderID int64) error {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return err
	}
	return s.orders.Delete(ctx, orderID)
}

type AddLineInput struct {
	OrderID             int64
	ServiceID           int64
	Quantity            int
	UnitPrice           float64
	EstimatedCompletion *time.Time
}

func (s *Service) AddLine(ctx context.Context, input AddLineInput) (model.OrderLine, error) {
	if _, err := s.orders.GetByID(ctx, input.OrderID); err != nil {
		return model.OrderLine{}, err
	}
	if _, err := s.catalog.GetByID(ctx, input.ServiceID); err != nil {
		return model.OrderLine{}, err
	}

	return s.lines.Create(ctx, model.OrderLine{
		OrderID:             input.OrderID,
		ServiceID:           input.ServiceID,
		Quantity:            input.Quantity,
		UnitPrice:           input.UnitPrice,
		EstimatedCompletion: input.EstimatedCompletion,
	})
}

func (s *Service) GetLine(ctx context.Context, lineID int64) (model.OrderLine, error) {
	return s.lines.GetByID(ctx, lineID)
}

func (s *Service) AllLines(ctx context.Context) ([]model.OrderLine, error) {
	return s.lines.List(ctx)
}

func (s *Service) ListLines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.lines.ListByOrder(ctx, orderID)
}

func (s *Service) SwapLineService(ctx context.Context, lineID, serviceID int64) error {
	if _, err := s.catalog.GetByID(ctx, serviceID); err != nil {
		return err
	}
	return s.lines.UpdateService(ctx, lineID, serviceID)
}

func (s *Service) SetLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	return s.lines.UpdateQuantity(ctx, lineID, quantity)
}

func (s *Service) SetLinePrice(ctx context.Context, lineID int64, unitPrice float64) error {
	return s.lines.UpdatePrice(ctx, lineID, unitPrice)
}

func (s *Service) AssignLineExecutor(ctx context.Context, lineID, executorID int64) error {
	if _, err := s.executors.GetByID(ctx, executorID); err != nil {
		return err
	}
	return s.lines.UpdateExecutor(ctx, lineID, executorID)
}

func (s *Service) SetLineCompletion(ctx context.Context, lineID int64, completion time.Time) error {
	return s.lines.UpdateCompletion(ctx, lineID, completion)
}

func (s *Service) SetLineStatus(ctx context.Context, lineID int64, status enums.OrderStatus) error {
	return s.lines.UpdateStatus(ctx, lineID, status)
}

// CompleteLine is the executor-side action: the line is marked completed and
// the parent aggregates are recomputed by the repo.
func (s *Service) CompleteLine(ctx context.Context, lineID int64) (model.OrderLine, error) {
	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return model.OrderLine{}, err
	}
	if err := s.lines.UpdateStatus(ctx, line.ID, enums.StatusCompleted); err != nil {
		return model.OrderLine{}, err
	}
	line.Status = enums.StatusCompleted
	return line, nil
}

func (s *Service) DeleteLine(ctx context.Context, lineID int64) error {
	if _, err := s.lines.GetByID(ctx, lineID); err != nil {
		return err
	}
	return s.lines.Delete(ctx, lineID)
}

// ActiveLinesForExecutor returns the executor's lines that are not completed.
func (s *Service) ActiveLinesForExecutor(ctx context.Context, executorID int64) ([]model.OrderLine, error) {
	lines, err := s.lines.ListByExecutor(ctx, executorID)
	if err != nil {
		return nil, err
	}

	active := lines[:0]
	for _, line := range lines {
		if line.Status != enums.StatusCompleted {
			active = append(active, line)
		}
	}
	return active, nil
}

// ClientForOrder resolves the order's client for message relay.
func (s *Service) ClientForOrder(ctx context.Context, orderID int64) (model.Client, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return model.Client{}, err
	}
	return s.clients.GetByID(ctx, order.ClientID)
}

// ExecutorForLine resolves the executor assigned to a line for message relay.
func (s *Service) ExecutorForLine(ctx context.Context, lineID int64) (model.Executor, model.OrderLine, error) {
	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return model.Executor{}, model.OrderLine{}, err
	}
	if line.ExecutorID == nil {
		return model.Executor{}, line, ErrLineUnassigned
	}
	executor, err := s.executors.GetByID(ctx, *line.ExecutorID)
	if err != nil {
		return model.Executor{}, line, err
	}
	return executor, line, nil
}
