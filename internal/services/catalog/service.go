package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/model"
)

type ServiceRepo interface {
	Create(context.Context, string, enums.Category, float64) (model.Service, error)
	GetByID(context.Context, int64) (model.Service, error)
	List(context.Context) ([]model.Service, error)
	UpdateName(context.Context, int64, string) error
	UpdateCategory(context.Context, int64, enums.Category) error
	UpdatePrice(context.Context, int64, float64) error
	Delete(context.Context, int64) error
}

type ClientRepo interface {
	Create(context.Context, string, string) (model.Client, error)
	GetByID(context.Context, int64) (model.Client, error)
	List(context.Context) ([]model.Client, error)
	Delete(context.Context, int64) error
}

type ExecutorRepo interface {
	Create(context.Context, string, enums.Category, int, string) (model.Executor, error)
	GetByID(context.Context, int64) (model.Executor, error)
	List(context.Context) ([]model.Executor, error)
	UpdateHandle(context.Context, int64, string) error
	UpdateCategory(context.Context, int64, enums.Category) error
	UpdateDifficulty(context.Context, int64, int) error
	Delete(context.Context, int64) error
}

// Service covers the admin-side catalog: clients, executors and the
// service price list the storefront is built from.
type Service struct {
	services  ServiceRepo
	clients   ClientRepo
	executors ExecutorRepo
}

func NewService(services ServiceRepo, clients ClientRepo, executors ExecutorRepo) *Service {
	return &Service{
		services:  services,
		clients:   clients,
		executors: executors,
	}
}

func (s *Service) AddClient(ctx context.Context, handle, passwordHash string) (model.Client, error) {
	handle = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
	if handle == "" {
		return model.Client{}, fmt.Errorf("client handle is required")
	}
	return s.clients.Create(ctx, handle, passwordHash)
}

func (s *Service) GetClient(ctx context.Context, id int64) (model.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *Service) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.clients.List(ctx)
}

func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	return s.clients.Delete(ctx, id)
}

func (s *Service) AddExecutor(ctx context.Context, handle string, category enums.Category, difficulty int, passwordHash string) (model.Executor, error) {
	handle = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
	if handle == "" {
		return model.Executor{}, fmt.Errorf("executor handle is required")
	}
	if !enums.ValidDifficulty(difficulty) {
		return model.Executor{}, fmt.Errorf("difficulty must be between %d and %d", enums.MinDifficulty, enums.MaxDifficulty)
	}
	return s.executors.Create(ctx, handle, category, difficulty, passwordHash)
}

func (s *Service) GetExecutor(ctx context.Context, id int64) (model.Executor, error) {
	return s.executors.GetByID(ctx, id)
}

func (s *Service) ListExecutors(ctx context.Context) ([]model.Executor, error) {
	return s.executors.List(ctx)
}

func (s *Service) RenameExecutor(ctx context.Context, id int64, handle string) error {
	handle = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
	if handle == "" {
		return fmt.Errorf("executor handle is required")
	}
	return s.executors.UpdateHandle(ctx, id, handle)
}

func (s *Service) RecategorizeExecutor(ctx context.Context, id int64, category enums.Category) error {
	return s.executors.UpdateCategory(ctx, id, category)
}

func (s *Service) SetExecutorDifficulty(ctx context.Context, id int64, difficulty int) error {
	if !enums.ValidDifficulty(difficulty) {
		return fmt.Errorf("difficulty must be between %d and %d", enums.MinDifficulty, enums.MaxDifficulty)
	}
	return s.executors.UpdateDifficulty(ctx, id, difficulty)
}

func (s *Service) DeleteExecutor(ctx context.Context, id int64) error {
	return s.executors.Delete(ctx, id)
}

func (s *Service) AddService(ctx context.Context, name string, category enums.Category, minPrice float64) (model.Service, error) {
	if strings.TrimSpace(name) == "" {
		return model.Service{}, fmt.Errorf("service name is required")
	}
	if minPrice < 0 {
		return model.Service{}, fmt.Errorf("service price must not be negative")
	}
	return s.services.Create(ctx, strings.TrimSpace(name), category, minPrice)
}

func (s *Service) GetService(ctx context.Context, id int64) (model.Service, error) {
	return s.services.GetByID(ctx, id)
}

func (s *Service) ListServices(ctx context.Context) ([]model.Service, error) {
	return s.services.List(ctx)
}

func (s *Service) RenameService(ctx context.Context, id int64, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("service name is required")
	}
	return s.services.UpdateName(ctx, id, strings.TrimSpace(name))
}

func (s *Service) RecategorizeService(ctx context.Context, id int64, category enums.Category) error {
	return s.services.UpdateCategory(ctx, id, category)
}

func (s *Service) RepriceService(ctx context.Context, id int64, minPrice float64) error {
	if minPrice < 0 {
		return fmt.Errorf("service price must not be negative")
	}
	return s.services.UpdatePrice(ctx, id, minPrice)
}

func (s *Service) DeleteService(ctx context.Context, id int64) error {
	return s.services.Delete(ctx, id)
}

type CategoryGroup struct {
	Category enums.Category
	Services []model.Service
}

// Storefront groups the price list by category in the fixed category order.
func (s *Service) Storefront(ctx context.Context) ([]CategoryGroup, error) {
	services, err := s.services.List(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[enums.Category][]model.Service, len(services))
	for _, svc := range services {
		byCategory[svc.Category] = append(byCategory[svc.Category], svc)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, category := range enums.Categories() {
		if list, ok := byCategory[category]; ok {
			groups = append(groups, CategoryGroup{Category: category, Services: list})
		}
	}

	return groups, nil
}
