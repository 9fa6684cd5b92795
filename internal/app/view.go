package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
	identitysvc "github.com/HanovichS/PixelHub/internal/services/identity"
	"github.com/HanovichS/PixelHub/internal/ui"
)

func (a *App) showStorefront(ctx context.Context, chatID int64) {
	groups, err := a.catalog.Storefront(ctx)
	if err != nil {
		a.logger.Error("storefront load failed", zap.Error(err))
		a.sendText(chatID, msgInternalError)
		return
	}
	a.sendChunks(chatID, ui.Storefront(groups, a.converter, a.cfg.Identity.ManagerContact))
}

// showActiveOrders is role-shaped: executors see their open lines, clients
// their own orders, managers everything.
func (a *App) showActiveOrders(ctx context.Context, chatID int64, ident identitysvc.Identity) {
	switch ident.Role {
	case enums.RoleExecutor:
		lines, err := a.orders.ActiveLinesForExecutor(ctx, ident.Executor.ID)
		if err != nil {
			a.replyDomainError(chatID, err)
			return
		}
		a.sendChunks(chatID, ui.LineList(lines))
	case enums.RoleClient:
		orders, err := a.orders.ListForClient(ctx, ident.Client.ID)
		if err != nil {
			a.replyDomainError(chatID, err)
			return
		}
		a.sendChunks(chatID, ui.OrderList(orders))
	default:
		a.viewOrders(ctx, chatID)
	}
}

func (a *App) viewClients(ctx context.Context, chatID int64) {
	clients, err := a.catalog.ListClients(ctx)
	if err != nil {
		a.replyDomainError(chatID, err)
		return
	}
	a.sendChunks(chatID, ui.ClientList(clients))
}

func (a *App) viewExecutors(ctx context.Context, chatID int64) {
	executors, err := a.catalog.ListExecutors(ctx)
	if err != nil {
		a.replyDomainError(chatID, err)
		return
	}
	a.sendChunks(chatID, ui.ExecutorList(executors))
}

func (a *App) viewServices(ctx context.Context, chatID int64) {
	services, err := a.catalog.ListServices(ctx)
	if err != nil {
		a.replyDomainError(chatID, err)
		return
	}
	a.sendChunks(chatID, ui.ServiceList(services))
}

func (a *App) viewOrders(ctx context.Context, chatID int64) {
	orders, err := a.orders.List(ctx)
	if err != nil {
		a.replyDomainError(chatID, err)
		return
	}
	a.sendChunks(chatID, ui.OrderList(orders))
}

func (a *App) viewLines(ctx context.Context, chatID int64) {
	lines, err := a.orders.AllLines(ctx)
	if err != nil {
		a.replyDomainError(chatID, err)
		return
	}
	a.sendChunks(chatID, ui.LineList(lines))
}
