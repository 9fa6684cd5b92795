package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/HanovichS/PixelHub/internal/classifier"
	"github.com/HanovichS/PixelHub/internal/config"
	"github.com/HanovichS/PixelHub/internal/dialog"
	"github.com/HanovichS/PixelHub/internal/domain/rules"
	"github.com/HanovichS/PixelHub/internal/infra/telegram"
	pgrepo "github.com/HanovichS/PixelHub/internal/repo/postgres"
	redrepo "github.com/HanovichS/PixelHub/internal/repo/redis"
	"github.com/HanovichS/PixelHub/internal/security"
	catalogsvc "github.com/HanovichS/PixelHub/internal/services/catalog"
	identitysvc "github.com/HanovichS/PixelHub/internal/services/identity"
	modsvc "github.com/HanovichS/PixelHub/internal/services/moderation"
	orderssvc "github.com/HanovichS/PixelHub/internal/services/orders"
	ratesvc "github.com/HanovichS/PixelHub/internal/services/rate"
	"github.com/HanovichS/PixelHub/internal/ui"
)

// Sender is the outbound half of the chat transport.
type Sender interface {
	Send(tgbotapi.Chattable) error
	Request(tgbotapi.Chattable) error
}

type Dependencies struct {
	Identity   *identitysvc.Service
	Catalog    *catalogsvc.Service
	Orders     *orderssvc.Service
	Moderation *modsvc.Service
	Limiter    *ratesvc.Limiter
	Classifier *classifier.Classifier
	Sender     Sender
}

// pendingEdit is the manager-side "awaiting replacement text" sub-state of a
// moderation edit. It overrides every other input from that manager's chat.
type pendingEdit struct {
	MessageID string
}

type App struct {
	cfg    config.Config
	logger *zap.Logger

	sender    Sender
	tg        *telegram.Client
	server    *http.Server
	postgres  *pgxpool.Pool
	redis     *goredis.Client
	states    *dialog.Store
	converter rules.Converter

	editMu     sync.Mutex
	editByChat map[int64]pendingEdit

	identity    *identitysvc.Service
	catalog     *catalogsvc.Service
	orders      *orderssvc.Service
	moderation  *modsvc.Service
	limiter     *ratesvc.Limiter
	classifier  *classifier.Classifier
	defaultHash string
}

// New wires an App from prebuilt services. Build is the production path;
// tests construct services over stub repos and call New directly.
func New(cfg config.Config, log *zap.Logger, deps Dependencies) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if deps.Sender == nil {
		return nil, fmt.Errorf("sender is required")
	}

	defaultHash, err := security.HashPassword(cfg.Identity.DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}

	return &App{
		cfg:         cfg,
		logger:      log,
		sender:      deps.Sender,
		states:      dialog.NewStore(),
		converter:   rules.NewConverter(cfg.Currency.USDToRUB, cfg.Currency.USDToBYN),
		editByChat:  make(map[int64]pendingEdit),
		identity:    deps.Identity,
		catalog:     deps.Catalog,
		orders:      deps.Orders,
		moderation:  deps.Moderation,
		limiter:     deps.Limiter,
		classifier:  deps.Classifier,
		defaultHash: defaultHash,
	}, nil
}

// Build constructs the full production wiring: postgres pool, redis client,
// repositories, services, the polling telegram client and the ops server.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	clientRepo := pgrepo.NewClientRepo(pool)
	executorRepo := pgrepo.NewExecutorRepo(pool)
	managerRepo := pgrepo.NewManagerRepo(pool)
	serviceRepo := pgrepo.NewServiceRepo(pool)
	orderRepo := pgrepo.NewOrderRepo(pool)
	lineRepo := pgrepo.NewLineRepo(pool)
	moderationRepo := pgrepo.NewModerationRepo(pool)
	rateRepo := redrepo.NewRateRepo(redisClient)

	identityService, err := identitysvc.NewService(managerRepo, executorRepo, clientRepo, cfg.Identity.DefaultPassword)
	if err != nil {
		return nil, err
	}
	catalogService := catalogsvc.NewService(serviceRepo, clientRepo, executorRepo)
	ordersService := orderssvc.NewService(orderRepo, lineRepo, clientRepo, serviceRepo, executorRepo)
	limiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.RelayPerMinute, cfg.Limits.RelayPer10Sec)

	keywords, err := classifier.LoadKeywords(cfg.Classifier.KeywordsFile)
	if err != nil {
		return nil, err
	}
	contentClassifier := classifier.New(classifier.Config{
		Keywords:  keywords,
		MaxDigits: cfg.Classifier.MaxDigits,
		DigitRun:  cfg.Classifier.DigitRun,
	})

	a, err := New(cfg, log, Dependencies{
		Identity:   identityService,
		Catalog:    catalogService,
		Orders:     ordersService,
		Limiter:    limiter,
		Classifier: contentClassifier,
		Sender:     noopSender{},
	})
	if err != nil {
		return nil, err
	}
	a.postgres = pool
	a.redis = redisClient

	tg, err := telegram.NewClient(cfg.Bot.Token, cfg.Bot.PollTimeout, log, a.HandleUpdate)
	if err != nil {
		return nil, err
	}
	a.tg = tg
	a.sender = tg

	a.moderation = modsvc.NewService(moderationRepo, managerRepo, lineRepo, notifier{app: a}, log)

	a.server = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      a.opsHandler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return a, nil
}

// noopSender is a placeholder until the telegram client is attached.
type noopSender struct{}

func (noopSender) Send(tgbotapi.Chattable) error    { return nil }
func (noopSender) Request(tgbotapi.Chattable) error { return nil }

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- a.tg.Start(ctx)
	}()
	go func() {
		a.logger.Info("ops server started", zap.String("addr", a.cfg.HTTP.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			shutdownErr = err
		}
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if err := a.sender.Send(msg); err != nil {
		a.logger.Error("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (a *App) sendWithKeyboard(chatID int64, text string, rows [][]string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = telegram.BuildReplyKeyboard(rows)
	if err := a.sender.Send(msg); err != nil {
		a.logger.Error("send keyboard message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (a *App) sendInline(chatID int64, text string, rows [][]telegram.InlineButton) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = telegram.BuildInlineKeyboard(rows)
	if err := a.sender.Send(msg); err != nil {
		a.logger.Error("send inline message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (a *App) sendChunks(chatID int64, text string) {
	for _, part := range ui.SplitByLength(text, ui.MaxMessageLength) {
		a.sendText(chatID, part)
	}
}

func (a *App) answerCallback(callbackID, text string) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if err := a.sender.Request(cb); err != nil {
		a.logger.Warn("answer callback failed", zap.Error(err))
	}
}

func (a *App) setPendingEdit(chatID int64, messageID string) {
	a.editMu.Lock()
	defer a.editMu.Unlock()
	a.editByChat[chatID] = pendingEdit{MessageID: messageID}
}

func (a *App) takePendingEdit(chatID int64) (pendingEdit, bool) {
	a.editMu.Lock()
	defer a.editMu.Unlock()
	pe, ok := a.editByChat[chatID]
	if ok {
		delete(a.editByChat, chatID)
	}
	return pe, ok
}

func (a *App) hasPendingEdit(chatID int64) bool {
	a.editMu.Lock()
	defer a.editMu.Unlock()
	_, ok := a.editByChat[chatID]
	return ok
}

func (a *App) clearPendingEdit(chatID int64) {
	a.editMu.Lock()
	defer a.editMu.Unlock()
	delete(a.editByChat, chatID)
}

// notifier adapts the app's sender to the moderation service.
type notifier struct {
	app *App
}

func (n notifier) SendText(chatID int64, text string) error {
	return n.app.sender.Send(tgbotapi.NewMessage(chatID, text))
}

func (n notifier) SendButtons(chatID int64, text string, rows [][]modsvc.Button) error {
	inline := make([][]telegram.InlineButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]telegram.InlineButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, telegram.InlineButton{Text: b.Text, Data: b.Data})
		}
		inline = append(inline, buttons)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = telegram.BuildInlineKeyboard(inline)
	return n.app.sender.Send(msg)
}
