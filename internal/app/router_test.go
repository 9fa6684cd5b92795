package app

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/HanovichS/PixelHub/internal/classifier"
	"github.com/HanovichS/PixelHub/internal/config"
	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/model"
	pgrepo "github.com/HanovichS/PixelHub/internal/repo/postgres"
	catalogsvc "github.com/HanovichS/PixelHub/internal/services/catalog"
	identitysvc "github.com/HanovichS/PixelHub/internal/services/identity"
	modsvc "github.com/HanovichS/PixelHub/internal/services/moderation"
	orderssvc "github.com/HanovichS/PixelHub/internal/services/orders"
	ratesvc "github.com/HanovichS/PixelHub/internal/services/rate"
	"github.com/HanovichS/PixelHub/internal/ui"
)

// In-memory repositories backing the real services, so routing tests cover
// the full path from an incoming update down to the domain layer.

type stubClients struct {
	byID   map[int64]*model.Client
	nextID int64
}

func (r *stubClients) Create(_ context.Context, handle, hash string) (model.Client, error) {
	for _, c := range r.byID {
		if c.Handle == handle {
			return model.Client{}, pgrepo.ErrAlreadyExists
		}
	}
	r.nextID++
	c := model.Client{ID: r.nextID, Handle: handle, PasswordHash: hash}
	r.byID[c.ID] = &c
	return c, nil
}

func (r *stubClients) GetOrCreate(ctx context.Context, handle, hash string) (model.Client, error) {
	if c, err := r.FindByHandle(ctx, handle); err == nil {
		return c, nil
	}
	return r.Create(ctx, handle, hash)
}

func (r *stubClients) GetByID(_ context.Context, id int64) (model.Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return model.Client{}, pgrepo.ErrClientNotFound
	}
	return *c, nil
}

func (r *stubClients) FindByHandle(_ context.Context, handle string) (model.Client, error) {
	for _, c := range r.byID {
		if c.Handle == handle {
			return *c, nil
		}
	}
	return model.Client{}, pgrepo.ErrClientNotFound
}

func (r *stubClients) List(_ context.Context) ([]model.Client, error) {
	out := make([]model.Client, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubClients) SetChatID(_ context.Context, id, chatID int64) error {
	if c, ok := r.byID[id]; ok && c.ChatID == nil {
		c.ChatID = &chatID
	}
	return nil
}

func (r *stubClients) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return pgrepo.ErrClientNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubExecutors struct {
	byID   map[int64]*model.Executor
	nextID int64
}

func (r *stubExecutors) Create(_ context.Context, handle string, category enums.Category, difficulty int, hash string) (model.Executor, error) {
	r.nextID++
	e := model.Executor{ID: r.nextID, Handle: handle, Category: category, Difficulty: difficulty, PasswordHash: hash}
	r.byID[e.ID] = &e
	return e, nil
}

func (r *stubExecutors) GetByID(_ context.Context, id int64) (model.Executor, error) {
	e, ok := r.byID[id]
	if !ok {
		return model.Executor{}, pgrepo.ErrExecutorNotFound
	}
	return *e, nil
}

func (r *stubExecutors) FindByHandle(_ context.Context, handle string) (model.Executor, error) {
	for _, e := range r.byID {
		if e.Handle == handle {
			return *e, nil
		}
	}
	return model.Executor{}, pgrepo.ErrExecutorNotFound
}

func (r *stubExecutors) List(_ context.Context) ([]model.Executor, error) {
	out := make([]model.Executor, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubExecutors) SetChatID(_ context.Context, id, chatID int64) error {
	if e, ok := r.byID[id]; ok && e.ChatID == nil {
		e.ChatID = &chatID
	}
	return nil
}

func (r *stubExecutors) UpdateHandle(_ context.Context, id int64, handle string) error {
	e, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrExecutorNotFound
	}
	e.Handle = handle
	return nil
}

func (r *stubExecutors) UpdateCategory(_ context.Context, id int64, category enums.Category) error {
	e, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrExecutorNotFound
	}
	e.Category = category
	return nil
}

func (r *stubExecutors) UpdateDifficulty(_ context.Context, id int64, difficulty int) error {
	e, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrExecutorNotFound
	}
	e.Difficulty = difficulty
	return nil
}

func (r *stubExecutors) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return pgrepo.ErrExecutorNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubManagers struct {
	byID map[int64]*model.Manager
}

func (r *stubManagers) FindByHandle(_ context.Context, handle string) (model.Manager, error) {
	for _, m := range r.byID {
		if m.Handle == handle {
			return *m, nil
		}
	}
	return model.Manager{}, pgrepo.ErrManagerNotFound
}

func (r *stubManagers) List(_ context.Context) ([]model.Manager, error) {
	out := make([]model.Manager, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubManagers) SetChatID(_ context.Context, id, chatID int64) error {
	if m, ok := r.byID[id]; ok && m.ChatID == nil {
		m.ChatID = &chatID
	}
	return nil
}

type stubServices struct {
	byID   map[int64]*model.Service
	nextID int64
}

func (r *stubServices) Create(_ context.Context, name string, category enums.Category, minPrice float64) (model.Service, error) {
	for _, s := range r.byID {
		if s.Name == name && s.Category == category {
			return model.Service{}, pgrepo.ErrAlreadyExists
		}
	}
	r.nextID++
	s := model.Service{ID: r.nextID, Name: name, Category: category, MinPrice: minPrice}
	r.byID[s.ID] = &s
	return s, nil
}

func (r *stubServices) GetByID(_ context.Context, id int64) (model.Service, error) {
	s, ok := r.byID[id]
	if !ok {
		return model.Service{}, pgrepo.ErrServiceNotFound
	}
	return *s, nil
}

func (r *stubServices) List(_ context.Context) ([]model.Service, error) {
	out := make([]model.Service, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubServices) UpdateName(_ context.Context, id int64, name string) error {
	s, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrServiceNotFound
	}
	s.Name = name
	return nil
}

func (r *stubServices) UpdateCategory(_ context.Context, id int64, category enums.Category) error {
	s, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrServiceNotFound
	}
	s.Category = category
	return nil
}

func (r *stubServices) UpdatePrice(_ context.Context, id int64, minPrice float64) error {
	s, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrServiceNotFound
	}
	s.MinPrice = minPrice
	return nil
}

func (r *stubServices) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return pgrepo.ErrServiceNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubOrders struct {
	byID   map[int64]*model.Order
	nextID int64
}

func (r *stubOrders) Create(_ context.Context, clientID int64) (model.Order, error) {
	r.nextID++
	o := model.Order{ID: r.nextID, ClientID: clientID, Status: enums.StatusProcessing, CreatedAt: time.Now()}
	r.byID[o.ID] = &o
	return o, nil
}

func (r *stubOrders) GetByID(_ context.Context, id int64) (model.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return model.Order{}, pgrepo.ErrOrderNotFound
	}
	return *o, nil
}

func (r *stubOrders) List(_ context.Context) ([]model.Order, error) {
	out := make([]model.Order, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (r *stubOrders) ListByClient(_ context.Context, clientID int64) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.byID {
		if o.ClientID == clientID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrders) UpdateClient(_ context.Context, id, clientID int64) error {
	o, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrOrderNotFound
	}
	o.ClientID = clientID
	return nil
}

func (r *stubOrders) UpdateStatus(_ context.Context, id int64, status enums.OrderStatus) error {
	o, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrders) UpdateCompletion(_ context.Context, id int64, completion time.Time) error {
	o, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrOrderNotFound
	}
	o.EstimatedCompletion = &completion
	return nil
}

func (r *stubOrders) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return pgrepo.ErrOrderNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubLines struct {
	orders   *stubOrders
	services *stubServices
	byID     map[int64]*model.OrderLine
	nextID   int64
}

func (r *stubLines) recompute(orderID int64) {
	o, ok := r.orders.byID[orderID]
	if !ok {
		return
	}
	var sum float64
	var latest *time.Time
	for _, l := range r.byID {
		if l.OrderID != orderID {
			continue
		}
		sum += l.UnitPrice
		if l.EstimatedCompletion != nil && (latest == nil || l.EstimatedCompletion.After(*latest)) {
			latest = l.EstimatedCompletion
		}
	}
	o.Price = sum
	o.EstimatedCompletion = latest
}

func (r *stubLines) Create(_ context.Context, input model.OrderLine) (model.OrderLine, error) {
	r.nextID++
	input.ID = r.nextID
	if input.Status == "" {
		input.Status = enums.StatusProcessing
	}
	stored := input
	r.byID[input.ID] = &stored
	r.recompute(input.OrderID)
	return input, nil
}

func (r *stubLines) GetByID(_ context.Context, id int64) (model.OrderLine, error) {
	l, ok := r.byID[id]
	if !ok {
		return model.OrderLine{}, pgrepo.ErrOrderLineNotFound
	}
	return *l, nil
}

func (r *stubLines) List(_ context.Context) ([]model.OrderLine, error) {
	out := make([]model.OrderLine, 0, len(r.byID))
	for _, l := range r.byID {
		out = append(out, *l)
	}
	return out, nil
}

func (r *stubLines) ListByOrder(_ context.Context, orderID int64) ([]model.OrderLine, error) {
	var out []model.OrderLine
	for _, l := range r.byID {
		if l.OrderID == orderID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLines) ListByExecutor(_ context.Context, executorID int64) ([]model.OrderLine, error) {
	var out []model.OrderLine
	for _, l := range r.byID {
		if l.ExecutorID != nil && *l.ExecutorID == executorID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLines) mutate(id int64, fn func(*model.OrderLine)) error {
	l, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrOrderLineNotFound
	}
	fn(l)
	r.recompute(l.OrderID)
	return nil
}

func (r *stubLines) UpdateService(_ context.Context, id, serviceID int64) error {
	return r.mutate(id, func(l *model.OrderLine) { l.ServiceID = serviceID })
}

func (r *stubLines) UpdateQuantity(_ context.Context, id int64, quantity int) error {
	return r.mutate(id, func(l *model.OrderLine) { l.Quantity = quantity })
}

func (r *stubLines) UpdatePrice(_ context.Context, id int64, unitPrice float64) error {
	return r.mutate(id, func(l *model.OrderLine) { l.UnitPrice = unitPrice })
}

func (r *stubLines) UpdateExecutor(_ context.Context, id, executorID int64) error {
	return r.mutate(id, func(l *model.OrderLine) { l.ExecutorID = &executorID })
}

func (r *stubLines) UpdateCompletion(_ context.Context, id int64, completion time.Time) error {
	return r.mutate(id, func(l *model.OrderLine) { l.EstimatedCompletion = &completion })
}

func (r *stubLines) UpdateStatus(_ context.Context, id int64, status enums.OrderStatus) error {
	return r.mutate(id, func(l *model.OrderLine) { l.Status = status })
}

func (r *stubLines) Delete(_ context.Context, id int64) error {
	l, ok := r.byID[id]
	if !ok {
		return pgrepo.ErrOrderLineNotFound
	}
	orderID := l.OrderID
	delete(r.byID, id)
	r.recompute(orderID)
	return nil
}

func (r *stubLines) GetContext(ctx context.Context, id int64) (model.LineContext, error) {
	l, ok := r.byID[id]
	if !ok {
		return model.LineContext{}, pgrepo.ErrOrderLineNotFound
	}
	name := "?"
	if s, err := r.services.GetByID(ctx, l.ServiceID); err == nil {
		name = s.Name
	}
	return model.LineContext{LineID: l.ID, OrderID: l.OrderID, ServiceName: name}, nil
}

type stubModeration struct {
	records map[string]*model.ModerationRecord
}

func (r *stubModeration) Create(_ context.Context, rec model.ModerationRecord) error {
	stored := rec
	r.records[rec.MessageID] = &stored
	return nil
}

func (r *stubModeration) GetByMessageID(_ context.Context, id string) (model.ModerationRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return model.ModerationRecord{}, pgrepo.ErrModerationNotFound
	}
	return *rec, nil
}

func (r *stubModeration) MarkProcessed(_ context.Context, id string) (bool, error) {
	rec, ok := r.records[id]
	if !ok || rec.Processed {
		return false, nil
	}
	rec.Processed = true
	return true, nil
}

func (r *stubModeration) UpdateText(_ context.Context, id, text string) error {
	if rec, ok := r.records[id]; ok {
		rec.Text = text
	}
	return nil
}

func (r *stubModeration) AppendResolution(_ context.Context, id string, res model.Resolution) error {
	if rec, ok := r.records[id]; ok {
		rec.ResolutionLog = append(rec.ResolutionLog, res)
	}
	return nil
}

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (s *fakeSender) Send(c tgbotapi.Chattable) error {
	s.sent = append(s.sent, c)
	return nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) error {
	s.sent = append(s.sent, c)
	return nil
}

func (s *fakeSender) textsTo(chatID int64) []string {
	var out []string
	for _, c := range s.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (s *fakeSender) lastTextTo(chatID int64) string {
	texts := s.textsTo(chatID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (s *fakeSender) reset() { s.sent = nil }

type senderNotifier struct {
	s *fakeSender
}

func (n senderNotifier) SendText(chatID int64, text string) error {
	return n.s.Send(tgbotapi.NewMessage(chatID, text))
}

func (n senderNotifier) SendButtons(chatID int64, text string, _ [][]modsvc.Button) error {
	return n.s.Send(tgbotapi.NewMessage(chatID, text))
}

type testEnv struct {
	app      *App
	sender   *fakeSender
	services *stubServices
	orders   *stubOrders
	lines    *stubLines
	mods     *stubModeration
}

const (
	managerChat  = int64(10)
	executorChat = int64(2000)
	clientChat   = int64(500)
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clients := &stubClients{byID: make(map[int64]*model.Client)}
	executors := &stubExecutors{byID: make(map[int64]*model.Executor)}
	managers := &stubManagers{byID: make(map[int64]*model.Manager)}
	services := &stubServices{byID: make(map[int64]*model.Service)}
	orders := &stubOrders{byID: make(map[int64]*model.Order)}
	lines := &stubLines{orders: orders, services: services, byID: make(map[int64]*model.OrderLine)}
	mods := &stubModeration{records: make(map[string]*model.ModerationRecord)}
	sender := &fakeSender{}

	mc := managerChat
	managers.byID[1] = &model.Manager{ID: 1, Handle: "boss", ChatID: &mc}
	ec := executorChat
	executors.byID[1] = &model.Executor{ID: 1, Handle: "worker", Category: enums.CategoryMontage, Difficulty: 2, ChatID: &ec}
	executors.nextID = 1
	cc := clientChat
	clients.byID[1] = &model.Client{ID: 1, Handle: "client1", ChatID: &cc}
	clients.nextID = 1
	services.byID[10] = &model.Service{ID: 10, Name: "Монтаж", Category: enums.CategoryMontage, MinPrice: 50}
	services.nextID = 10

	order := &model.Order{ID: 1, ClientID: 1, Status: enums.StatusProcessing}
	orders.byID[1] = order
	orders.nextID = 1
	execID := int64(1)
	lines.byID[1] = &model.OrderLine{ID: 1, OrderID: 1, ServiceID: 10, ExecutorID: &execID, Quantity: 1, UnitPrice: 100, Status: enums.StatusInProgress}
	lines.nextID = 1
	lines.recompute(1)

	identityService, err := identitysvc.NewService(managers, executors, clients, "pw")
	if err != nil {
		t.Fatalf("identity service: %v", err)
	}
	catalogService := catalogsvc.NewService(services, clients, executors)
	ordersService := orderssvc.NewService(orders, lines, clients, services, executors)
	moderationService := modsvc.NewService(mods, managers, lines, senderNotifier{s: sender}, zap.NewNop())

	cfg := config.Default()
	application, err := New(cfg, zap.NewNop(), Dependencies{
		Identity:   identityService,
		Catalog:    catalogService,
		Orders:     ordersService,
		Moderation: moderationService,
		Limiter:    ratesvc.NewLimiter(nil, 20, 5),
		Classifier: classifier.New(classifier.Config{}),
		Sender:     sender,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return &testEnv{app: application, sender: sender, services: services, orders: orders, lines: lines, mods: mods}
}

func textUpdate(chatID int64, username, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{UserName: username},
		Chat: &tgbotapi.Chat{ID: chatID},
	}}
}

func callbackUpdate(chatID int64, username, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{UserName: username},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func TestStartShowsRoleMenu(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "/start"))
	if !strings.Contains(env.sender.lastTextTo(managerChat), "Привет") {
		t.Fatalf("manager greeting missing: %q", env.sender.lastTextTo(managerChat))
	}

	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", "/start"))
	if !strings.Contains(env.sender.lastTextTo(clientChat), "Привет") {
		t.Fatalf("client greeting missing: %q", env.sender.lastTextTo(clientChat))
	}
}

func TestAdminButtonsDeniedForClient(t *testing.T) {
	env := newTestEnv(t)

	env.app.HandleUpdate(context.Background(), textUpdate(clientChat, "client1", ui.BtnAdd))

	if got := env.sender.lastTextTo(clientChat); got != msgDenied {
		t.Fatalf("got %q, want %q", got, msgDenied)
	}
}

func TestUnknownSenderProvisionedAsClient(t *testing.T) {
	env := newTestEnv(t)

	env.app.HandleUpdate(context.Background(), textUpdate(int64(7777), "stranger", "/start"))

	if !strings.Contains(env.sender.lastTextTo(7777), "Привет") {
		t.Fatal("newcomer must get the client menu")
	}
	env.app.HandleUpdate(context.Background(), textUpdate(int64(7777), "stranger", ui.BtnDel))
	if got := env.sender.lastTextTo(7777); got != msgDenied {
		t.Fatalf("got %q, want %q", got, msgDenied)
	}
}

func TestNumericPromptSelfLoopsOnGarbage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", ui.BtnDelOrder))
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "abc"))
	if got := env.sender.lastTextTo(managerChat); got != msgBadNumber {
		t.Fatalf("got %q, want %q", got, msgBadNumber)
	}

	// state survives, a second garbage input loops again
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "-5"))
	if got := env.sender.lastTextTo(managerChat); got != msgBadNumber {
		t.Fatalf("got %q, want %q", got, msgBadNumber)
	}

	// and a valid id still advances the same flow
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "1"))
	if !strings.Contains(env.sender.lastTextTo(managerChat), "уверены") {
		t.Fatalf("expected confirmation prompt, got %q", env.sender.lastTextTo(managerChat))
	}
}

func TestTwoPhaseDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", ui.BtnDelOrder))
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "1"))

	if _, ok := env.orders.byID[1]; !ok {
		t.Fatal("order must survive until confirmation")
	}

	env.app.HandleUpdate(ctx, callbackUpdate(managerChat, "boss", "confirm_delete"))

	if _, ok := env.orders.byID[1]; ok {
		t.Fatal("order must be deleted after confirmation")
	}
	if !strings.Contains(env.sender.lastTextTo(managerChat), "удалена") {
		t.Fatalf("missing deletion ack: %q", env.sender.lastTextTo(managerChat))
	}
}

func TestTwoPhaseDeleteCancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", ui.BtnDelOrder))
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "1"))
	env.app.HandleUpdate(ctx, callbackUpdate(managerChat, "boss", "cancel_delete"))

	if _, ok := env.orders.byID[1]; !ok {
		t.Fatal("cancelled delete must keep the order")
	}
}

func TestCancelDropsFlowState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", ui.BtnDelOrder))
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "Отмена"))

	if !strings.Contains(env.sender.lastTextTo(managerChat), "Привет") {
		t.Fatal("cancel must re-render the root menu")
	}

	// the old flow is gone: a number is now just an unknown menu entry
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "1"))
	if got := env.sender.lastTextTo(managerChat); got != msgMenuHint {
		t.Fatalf("got %q, want %q", got, msgMenuHint)
	}
	if _, ok := env.orders.byID[1]; !ok {
		t.Fatal("order must be untouched")
	}
}

func TestSuspiciousRelayGoesToModeration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", ui.BtnContactExecutor))
	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", "1"))
	env.sender.reset()
	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", "встретимся в тг"))

	if len(env.mods.records) != 1 {
		t.Fatalf("moderation records = %d, want 1", len(env.mods.records))
	}
	if got := env.sender.textsTo(executorChat); len(got) != 0 {
		t.Fatalf("flagged message must not reach the executor, got %v", got)
	}
	if !strings.Contains(env.sender.lastTextTo(clientChat), "на проверку") {
		t.Fatalf("sender must be told about moderation, got %q", env.sender.lastTextTo(clientChat))
	}
	if len(env.sender.textsTo(managerChat)) != 1 {
		t.Fatal("manager must receive the broadcast")
	}

	var messageID string
	for id := range env.mods.records {
		messageID = id
	}
	env.app.HandleUpdate(ctx, callbackUpdate(managerChat, "boss", "approve_"+itoa(executorChat)+"_"+messageID))

	delivered := env.sender.textsTo(executorChat)
	if len(delivered) != 1 || !strings.Contains(delivered[0], "встретимся в тг") {
		t.Fatalf("approved text must reach the executor, got %v", delivered)
	}
}

func TestCleanRelayDeliveredDirectly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", ui.BtnContactExecutor))
	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", "1"))
	env.sender.reset()
	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", "когда будет готов монтаж"))

	if len(env.mods.records) != 0 {
		t.Fatal("clean text must not be flagged")
	}
	delivered := env.sender.textsTo(executorChat)
	if len(delivered) != 1 || !strings.Contains(delivered[0], "когда будет готов монтаж") {
		t.Fatalf("unexpected delivery: %v", delivered)
	}
	if !strings.Contains(delivered[0], "📨 Новое сообщение") {
		t.Fatalf("delivery must carry the relay header: %q", delivered[0])
	}
}

func TestClientCannotRelayToForeignLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// second client with their own chat but no orders
	env.app.HandleUpdate(ctx, textUpdate(int64(600), "client2", ui.BtnContactExecutor))
	env.app.HandleUpdate(ctx, textUpdate(int64(600), "client2", "1"))

	if got := env.sender.lastTextTo(600); got != msgNotFound {
		t.Fatalf("got %q, want %q", got, msgNotFound)
	}
}

func TestExecutorCompletesOwnLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(executorChat, "worker", ui.BtnCompleteOrder))
	env.app.HandleUpdate(ctx, textUpdate(executorChat, "worker", "1"))

	if env.lines.byID[1].Status != enums.StatusCompleted {
		t.Fatalf("line status = %v, want completed", env.lines.byID[1].Status)
	}
	if !strings.Contains(env.sender.lastTextTo(clientChat), "выполнена") {
		t.Fatal("client must be notified about the completed line")
	}
}

func TestModerationEditFlowThroughRouter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", ui.BtnContactExecutor))
	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", "1"))
	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", "мой ник @somewhere"))

	var messageID string
	for id := range env.mods.records {
		messageID = id
	}
	if messageID == "" {
		t.Fatal("expected a flagged record")
	}

	env.app.HandleUpdate(ctx, callbackUpdate(managerChat, "boss", "edit_"+itoa(executorChat)+"_"+messageID))
	env.sender.reset()
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "вопрос по срокам"))

	delivered := env.sender.textsTo(executorChat)
	if len(delivered) != 1 || !strings.Contains(delivered[0], "вопрос по срокам") {
		t.Fatalf("edited text must reach the executor, got %v", delivered)
	}
	if env.mods.records[messageID].Text != "вопрос по срокам" {
		t.Fatal("stored text must be replaced")
	}
}

func TestStorefrontIsStateless(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", ui.BtnMakeOrder))

	if !strings.Contains(env.sender.lastTextTo(clientChat), "Монтаж") {
		t.Fatalf("storefront must list the catalog, got %q", env.sender.lastTextTo(clientChat))
	}

	// browsing the storefront starts no flow
	env.app.HandleUpdate(ctx, textUpdate(clientChat, "client1", "1"))
	if got := env.sender.lastTextTo(clientChat); got != msgMenuHint {
		t.Fatalf("got %q, want %q", got, msgMenuHint)
	}
}

func TestAddServiceFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", ui.BtnAddService))
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "Логотип"))
	env.app.HandleUpdate(ctx, callbackUpdate(managerChat, "boss", "service_category_Design"))
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "50"))

	var created *model.Service
	for _, s := range env.services.byID {
		if s.Name == "Логотип" {
			created = s
		}
	}
	if created == nil {
		t.Fatal("service must be created")
	}
	if created.Category != enums.CategoryDesign || created.MinPrice != 50 {
		t.Fatalf("unexpected service: %+v", created)
	}

	// flow is finished, the next number is plain menu input
	env.app.HandleUpdate(ctx, textUpdate(managerChat, "boss", "7"))
	if got := env.sender.lastTextTo(managerChat); got != msgMenuHint {
		t.Fatalf("got %q, want %q", got, msgMenuHint)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
