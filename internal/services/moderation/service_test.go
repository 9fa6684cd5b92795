package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/HanovichS/PixelHub/internal/domain/enums"
	"github.com/HanovichS/PixelHub/internal/domain/model"
)

type fakeRepo struct {
	records map[string]*model.ModerationRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*model.ModerationRecord)}
}

func (r *fakeRepo) Create(_ context.Context, rec model.ModerationRecord) error {
	stored := rec
	r.records[rec.MessageID] = &stored
	return nil
}

func (r *fakeRepo) GetByMessageID(_ context.Context, id string) (model.ModerationRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return model.ModerationRecord{}, errors.New("record not found")
	}
	return *rec, nil
}

// MarkProcessed mirrors the compare-and-set semantics of the SQL repo: only
// the first caller wins.
func (r *fakeRepo) MarkProcessed(_ context.Context, id string) (bool, error) {
	rec, ok := r.records[id]
	if !ok || rec.Processed {
		return false, nil
	}
	rec.Processed = true
	return true, nil
}

func (r *fakeRepo) UpdateText(_ context.Context, id, text string) error {
	if rec, ok := r.records[id]; ok {
		rec.Text = text
	}
	return nil
}

func (r *fakeRepo) AppendResolution(_ context.Context, id string, res model.Resolution) error {
	if rec, ok := r.records[id]; ok {
		rec.ResolutionLog = append(rec.ResolutionLog, res)
	}
	return nil
}

type fakeManagers struct {
	managers []model.Manager
}

func (r *fakeManagers) List(_ context.Context) ([]model.Manager, error) {
	return r.managers, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	texts       []sentMessage
	broadcasts  []sentMessage
	failChatIDs map[int64]bool
}

func (n *fakeNotifier) SendText(chatID int64, text string) error {
	if n.failChatIDs[chatID] {
		return errors.New("unreachable chat")
	}
	n.texts = append(n.texts, sentMessage{chatID: chatID, text: text})
	return nil
}

func (n *fakeNotifier) SendButtons(chatID int64, text string, _ [][]Button) error {
	if n.failChatIDs[chatID] {
		return errors.New("unreachable chat")
	}
	n.broadcasts = append(n.broadcasts, sentMessage{chatID: chatID, text: text})
	return nil
}

type fakeLineContext struct {
	contexts map[int64]model.LineContext
}

func (r *fakeLineContext) GetContext(_ context.Context, id int64) (model.LineContext, error) {
	lc, ok := r.contexts[id]
	if !ok {
		return model.LineContext{}, errors.New("line not found")
	}
	return lc, nil
}

func chatPtr(v int64) *int64 { return &v }

func flagFixture(t *testing.T, svc *Service) model.ModerationRecord {
	t.Helper()
	lineID := int64(7)
	rec, err := svc.Flag(context.Background(), FlagInput{
		Text:           "встретимся в тг",
		ReceiverChatID: 1000,
		ReceiverHandle: "worker",
		ReceiverRole:   enums.RoleExecutor,
		SenderHandle:   "client1",
		OrderLineID:    &lineID,
	})
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}
	return rec
}

func newFixture() (*Service, *fakeRepo, *fakeNotifier) {
	repo := newFakeRepo()
	managers := &fakeManagers{managers: []model.Manager{
		{ID: 1, Handle: "boss", ChatID: chatPtr(10)},
		{ID: 2, Handle: "deputy", ChatID: chatPtr(20)},
		{ID: 3, Handle: "offline"},
	}}
	lines := &fakeLineContext{contexts: map[int64]model.LineContext{
		7: {LineID: 7, OrderID: 3, ServiceName: "Монтаж"},
	}}
	notifier := &fakeNotifier{failChatIDs: make(map[int64]bool)}
	return NewService(repo, managers, lines, notifier, zap.NewNop()), repo, notifier
}

func TestFlagBroadcastsToBoundManagers(t *testing.T) {
	svc, repo, notifier := newFixture()

	rec := flagFixture(t, svc)

	if _, ok := repo.records[rec.MessageID]; !ok {
		t.Fatal("record not persisted")
	}
	if len(notifier.broadcasts) != 2 {
		t.Fatalf("broadcasts = %d, want 2 (unbound manager skipped)", len(notifier.broadcasts))
	}
	if !strings.Contains(notifier.broadcasts[0].text, "⚠️ Подозрительное сообщение") {
		t.Fatalf("unexpected broadcast text: %q", notifier.broadcasts[0].text)
	}
	if !strings.Contains(notifier.broadcasts[0].text, "Монтаж") {
		t.Fatal("broadcast must carry the line context")
	}
}

func TestFlagToleratesPartialDeliveryFailure(t *testing.T) {
	svc, _, notifier := newFixture()
	notifier.failChatIDs[10] = true

	rec := flagFixture(t, svc)

	if len(notifier.broadcasts) != 1 || notifier.broadcasts[0].chatID != 20 {
		t.Fatalf("expected delivery to the remaining manager, got %+v", notifier.broadcasts)
	}
	if rec.MessageID == "" {
		t.Fatal("record must still be created")
	}
}

func TestFlagNoReachableManagers(t *testing.T) {
	svc, _, notifier := newFixture()
	notifier.failChatIDs[10] = true
	notifier.failChatIDs[20] = true

	lineID := int64(7)
	_, err := svc.Flag(context.Background(), FlagInput{
		Text:           "x",
		ReceiverChatID: 1000,
		OrderLineID:    &lineID,
	})
	if !errors.Is(err, ErrNoManagers) {
		t.Fatalf("err = %v, want ErrNoManagers", err)
	}
}

func TestApproveDeliversOriginalTextOnce(t *testing.T) {
	svc, repo, notifier := newFixture()
	rec := flagFixture(t, svc)

	resolved, err := svc.Approve(context.Background(), rec.MessageID, 1)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !resolved.Processed {
		t.Fatal("record must be marked processed")
	}
	if len(notifier.texts) != 1 || notifier.texts[0].chatID != 1000 {
		t.Fatalf("unexpected deliveries: %+v", notifier.texts)
	}
	if !strings.Contains(notifier.texts[0].text, "встретимся в тг") {
		t.Fatal("approved delivery must carry the original text")
	}

	stored := repo.records[rec.MessageID]
	if len(stored.ResolutionLog) != 1 || stored.ResolutionLog[0].Action != "approved" {
		t.Fatalf("unexpected resolution log: %+v", stored.ResolutionLog)
	}

	// the racing second manager loses
	if _, err := svc.Approve(context.Background(), rec.MessageID, 2); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second approve err = %v, want ErrAlreadyResolved", err)
	}
	if len(notifier.texts) != 1 {
		t.Fatal("losing verdict must not deliver again")
	}
	if len(repo.records[rec.MessageID].ResolutionLog) != 1 {
		t.Fatal("losing verdict must not append to the resolution log")
	}
}

func TestDiscardDeliversNothing(t *testing.T) {
	svc, repo, notifier := newFixture()
	rec := flagFixture(t, svc)

	if _, err := svc.Discard(context.Background(), rec.MessageID, 2); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if len(notifier.texts) != 0 {
		t.Fatalf("discard must not deliver, got %+v", notifier.texts)
	}
	stored := repo.records[rec.MessageID]
	if !stored.Processed || stored.ResolutionLog[0].Action != "deleted" {
		t.Fatalf("unexpected record state: %+v", stored)
	}
}

func TestEditFlow(t *testing.T) {
	svc, repo, notifier := newFixture()
	rec := flagFixture(t, svc)

	if _, err := svc.BeginEdit(context.Background(), rec.MessageID); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}

	resolved, err := svc.CompleteEdit(context.Background(), rec.MessageID, "правки готовы", 1)
	if err != nil {
		t.Fatalf("CompleteEdit: %v", err)
	}
	if resolved.Text != "правки готовы" {
		t.Fatalf("text = %q, want replacement", resolved.Text)
	}
	if len(notifier.texts) != 1 || !strings.Contains(notifier.texts[0].text, "правки готовы") {
		t.Fatalf("unexpected deliveries: %+v", notifier.texts)
	}

	stored := repo.records[rec.MessageID]
	if stored.Text != "правки готовы" {
		t.Fatal("stored text must be replaced")
	}
	if stored.ResolutionLog[0].Action != "edited" || stored.ResolutionLog[0].NewText != "правки готовы" {
		t.Fatalf("unexpected resolution: %+v", stored.ResolutionLog[0])
	}

	if _, err := svc.BeginEdit(context.Background(), rec.MessageID); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("BeginEdit after resolve err = %v, want ErrAlreadyResolved", err)
	}
}
