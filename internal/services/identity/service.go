package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/model"
	pgrepo "github.com/HanovichS/PixelHub/internal/repo/postgres"
	"github.com/HanovichS/PixelHub/internal/security"
)

var ErrNoHandle = errors.New("sender has no handle")

type ManagerRepo interface {
	FindByHandle(context.Context, string) (model.Manager, error)
	SetChatID(context.Context, int64, int64) error
}

type ExecutorRepo interface {
	FindByHandle(context.Context, string) (model.Executor, error)
	SetChatID(context.Context, int64, int64) error
}

type ClientRepo interface {
	FindByHandle(context.Context, string) (model.Client, error)
	GetOrCreate(context.Context, string, string) (model.Client, error)
	SetChatID(context.Context, int64, int64) error
}

type Identity struct {
	Role     enums.Role
	Manager  model.Manager
	Executor model.Executor
	Client   model.Client
}

// Service resolves a chat handle to a role. Lookup priority is
// Manager, then Executor, then Client; a handle registered in a higher
// priority role is never re-provisioned as a client.
type Service struct {
	managers    ManagerRepo
	executors   ExecutorRepo
	clients     ClientRepo
	defaultHash string
}

func NewService(managers ManagerRepo, executors ExecutorRepo, clients ClientRepo, defaultPassword string) (*Service, error) {
	hash, err := security.HashPassword(defaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash default client password: %w", err)
	}

	return &Service{
		managers:    managers,
		executors:   executors,
		clients:     clients,
		defaultHash: hash,
	}, nil
}

func (s *Service) Resolve(ctx context.Context, handle string, chatID int64) (Identity, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return Identity{}, ErrNoHandle
	}

	manager, err := s.managers.FindByHandle(ctx, handle)
	if err == nil {
		if manager.ChatID == nil && chatID != 0 {
			if err := s.managers.SetChatID(ctx, manager.ID, chatID); err != nil {
				return Identity{}, err
			}
			manager.ChatID = &chatID
		}
		return Identity{Role: enums.RoleManager, Manager: manager}, nil
	}
	if !errors.Is(err, pgrepo.ErrManagerNotFound) {
		return Identity{}, err
	}

	executor, err := s.executors.FindByHandle(ctx, handle)
	if err == nil {
		if executor.ChatID == nil && chatID != 0 {
			if err := s.executors.SetChatID(ctx, executor.ID, chatID); err != nil {
				return Identity{}, err
			}
			executor.ChatID = &chatID
		}
		return Identity{Role: enums.RoleExecutor, Executor: executor}, nil
	}
	if !errors.Is(err, pgrepo.ErrExecutorNotFound) {
		return Identity{}, err
	}

	client, err := s.clients.FindByHandle(ctx, handle)
	if errors.Is(err, pgrepo.ErrClientNotFound) {
		client, err = s.clients.GetOrCreate(ctx, handle, s.defaultHash)
	}
	if err != nil {
		return Identity{}, err
	}

	if client.ChatID == nil && chatID != 0 {
		if err := s.clients.SetChatID(ctx, client.ID, chatID); err != nil {
			return Identity{}, err
		}
		client.ChatID = &chatID
	}

	return Identity{Role: enums.RoleClient, Client: client}, nil
}
