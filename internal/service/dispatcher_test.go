package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-filter-bot/internal/biz"
	"telegram-filter-bot/internal/biz/domain"
	"telegram-filter-bot/internal/biz/repo"
	"telegram-filter-bot/internal/biz/usecase"
)

const (
	testOwner int64 = 1
	testAdmin int64 = 2
	testUser  int64 = 3
	testChat  int64 = -100
)

// mockSender records every outbound call for assertions.
type mockSender struct {
	mu        sync.Mutex
	plans     []*domain.SendPlan
	texts     []string
	htmls     []string
	edits     []string
	deleted   []int
	callbacks []string
	nextID    int
}

func (m *mockSender) SendPlan(_ context.Context, _ int64, plan *domain.SendPlan) (*repo.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, plan)
	m.nextID++
	return &repo.SentMessage{ChatID: testChat, MessageID: m.nextID}, nil
}

func (m *mockSender) SendText(_ context.Context, _ int64, text string) (*repo.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	m.nextID++
	return &repo.SentMessage{ChatID: testChat, MessageID: m.nextID}, nil
}

func (m *mockSender) SendHTML(_ context.Context, _ int64, html string, _ [][]domain.Button) (*repo.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.htmls = append(m.htmls, html)
	m.nextID++
	return &repo.SentMessage{ChatID: testChat, MessageID: m.nextID}, nil
}

func (m *mockSender) EditHTML(_ context.Context, _ int64, _ int, html string, _ [][]domain.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, html)
	return nil
}

func (m *mockSender) Delete(_ context.Context, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockSender) AnswerCallback(_ context.Context, callbackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callbackID)
	return nil
}

func (m *mockSender) sendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plans) + len(m.texts) + len(m.htmls)
}

// memFilters is an insertion-ordered filter table for dispatcher tests.
type memFilters struct {
	filters map[string]*domain.Filter
	order   []string
}

func newMemFilters() *memFilters {
	return &memFilters{filters: make(map[string]*domain.Filter)}
}

func (r *memFilters) Get(_ context.Context, name string) (*domain.Filter, error) {
	return r.filters[name], nil
}

func (r *memFilters) Names(_ context.Context) ([]string, error) {
	return append([]string(nil), r.order...), nil
}

func (r *memFilters) Put(_ context.Context, name string, f *domain.Filter) error {
	if _, ok := r.filters[name]; !ok {
		r.order = append(r.order, name)
	}
	r.filters[name] = f
	return nil
}

func (r *memFilters) Delete(_ context.Context, name string) error {
	delete(r.filters, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memFilters) Rename(_ context.Context, oldName, newName string) error {
	r.filters[newName] = r.filters[oldName]
	delete(r.filters, oldName)
	for i, n := range r.order {
		if n == oldName {
			r.order[i] = newName
			break
		}
	}
	return nil
}

func (r *memFilters) Count(_ context.Context) (int, error) {
	return len(r.filters), nil
}

// memAccess is the in-memory access store for dispatcher tests.
type memAccess struct {
	admins    map[int64]bool
	blacklist map[int64]bool
	timeouts  map[int64]domain.Timeout
}

func newMemAccess() *memAccess {
	return &memAccess{
		admins:    map[int64]bool{testAdmin: true},
		blacklist: make(map[int64]bool),
		timeouts:  make(map[int64]domain.Timeout),
	}
}

func (r *memAccess) ListAdmins(_ context.Context) ([]int64, error) {
	var out []int64
	for id := range r.admins {
		out = append(out, id)
	}
	return out, nil
}

func (r *memAccess) IsAdmin(_ context.Context, userID int64) (bool, error) {
	return r.admins[userID], nil
}

func (r *memAccess) AddAdmin(_ context.Context, userID int64) error {
	r.admins[userID] = true
	return nil
}

func (r *memAccess) RemoveAdmin(_ context.Context, userID int64) error {
	delete(r.admins, userID)
	return nil
}

func (r *memAccess) IsBlacklisted(_ context.Context, userID int64) (bool, error) {
	return r.blacklist[userID], nil
}

func (r *memAccess) AddToBlacklist(_ context.Context, userID int64) error {
	r.blacklist[userID] = true
	return nil
}

func (r *memAccess) RemoveFromBlacklist(_ context.Context, userID int64) error {
	delete(r.blacklist, userID)
	return nil
}

func (r *memAccess) GetTimeout(_ context.Context, userID int64) (*domain.Timeout, error) {
	t, ok := r.timeouts[userID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memAccess) SetTimeout(_ context.Context, userID int64, t domain.Timeout) error {
	r.timeouts[userID] = t
	return nil
}

func (r *memAccess) ClearTimeout(_ context.Context, userID int64) error {
	delete(r.timeouts, userID)
	return nil
}

func newTestDispatcher(filters *memFilters, access *memAccess) (*Dispatcher, *mockSender) {
	sender := &mockSender{}
	uc := &biz.Usecases{
		Trigger:   usecase.NewTriggerUsecase(filters),
		Router:    usecase.NewRouterUsecase(nil, nil),
		Render:    usecase.NewRenderUsecase(),
		Guard:     usecase.NewGuardUsecase(testOwner, access),
		RateLimit: usecase.NewRateLimiter(time.Second, 100),
	}
	scheduler := NewAutoDeleteScheduler(sender)
	d := NewDispatcher(uc, filters, sender, scheduler, time.Hour, time.Hour)
	return d, sender
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 10,
		Text:      text,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: testChat},
	}}
}

func commandUpdate(userID int64, text string) tgbotapi.Update {
	u := textUpdate(userID, text)
	cmdLen := len(strings.Fields(text)[0])
	u.Message.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: cmdLen},
	}
	return u
}

func TestDispatcherTriggerSendsFilter(t *testing.T) {
	filters := newMemFilters()
	filters.Put(context.Background(), "rules", &domain.Filter{Text: "be kind"})
	d, sender := newTestDispatcher(filters, newMemAccess())

	d.HandleUpdate(context.Background(), textUpdate(testUser, "!rules"))

	if len(sender.plans) != 1 {
		t.Fatalf("Expected one plan send, got %d", len(sender.plans))
	}
	if sender.plans[0].Text != "be kind" {
		t.Errorf("Unexpected plan text: %q", sender.plans[0].Text)
	}
}

func TestDispatcherIgnoresUnmatchedText(t *testing.T) {
	d, sender := newTestDispatcher(newMemFilters(), newMemAccess())

	d.HandleUpdate(context.Background(), textUpdate(testUser, "just chatting"))

	if n := sender.sendCount(); n != 0 {
		t.Errorf("Expected silence, got %d sends", n)
	}
}

func TestDispatcherDropsBlacklistedUser(t *testing.T) {
	filters := newMemFilters()
	filters.Put(context.Background(), "rules", &domain.Filter{Text: "be kind"})
	access := newMemAccess()
	access.blacklist[testUser] = true
	d, sender := newTestDispatcher(filters, access)

	d.HandleUpdate(context.Background(), textUpdate(testUser, "!rules"))

	if n := sender.sendCount(); n != 0 {
		t.Errorf("Blacklisted user must be ignored, got %d sends", n)
	}
}

func TestDispatcherDropsTimedOutUser(t *testing.T) {
	filters := newMemFilters()
	filters.Put(context.Background(), "rules", &domain.Filter{Text: "be kind"})
	access := newMemAccess()
	access.timeouts[testUser] = domain.Timeout{Until: time.Now().Add(time.Hour)}
	d, sender := newTestDispatcher(filters, access)

	d.HandleUpdate(context.Background(), textUpdate(testUser, "!rules"))

	if n := sender.sendCount(); n != 0 {
		t.Errorf("Timed-out user must be ignored, got %d sends", n)
	}
}

func TestDispatcherFilterCommandRequiresAdmin(t *testing.T) {
	d, sender := newTestDispatcher(newMemFilters(), newMemAccess())

	d.HandleUpdate(context.Background(), textUpdate(testUser, "!list"))

	if len(sender.htmls) != 1 || !strings.Contains(sender.htmls[0], "not an admin") {
		t.Errorf("Expected admin rejection, got %v", sender.htmls)
	}
}

func TestDispatcherAddAndTriggerFilter(t *testing.T) {
	filters := newMemFilters()
	d, sender := newTestDispatcher(filters, newMemAccess())
	ctx := context.Background()

	u := textUpdate(testAdmin, "!add greet")
	u.Message.ReplyToMessage = &tgbotapi.Message{
		Text: "Hello there",
		From: &tgbotapi.User{ID: testAdmin},
	}
	d.HandleUpdate(ctx, u)

	if f, _ := filters.Get(ctx, "greet"); f == nil || f.Text != "Hello there" {
		t.Fatalf("Filter not stored: %+v", f)
	}
	if len(sender.htmls) != 1 || !strings.Contains(sender.htmls[0], "added") {
		t.Errorf("Expected confirmation, got %v", sender.htmls)
	}

	d.HandleUpdate(ctx, textUpdate(testUser, "greet"))
	if len(sender.plans) != 1 || sender.plans[0].Text != "Hello there" {
		t.Errorf("Stored filter did not dispatch: %v", sender.plans)
	}
}

func TestDispatcherDeleteMissingFilter(t *testing.T) {
	d, sender := newTestDispatcher(newMemFilters(), newMemAccess())

	d.HandleUpdate(context.Background(), textUpdate(testAdmin, "!del ghost"))

	if len(sender.htmls) != 1 || !strings.Contains(sender.htmls[0], "does not exist") {
		t.Errorf("Expected missing-filter reply, got %v", sender.htmls)
	}
}

func TestDispatcherAskDisabled(t *testing.T) {
	d, sender := newTestDispatcher(newMemFilters(), newMemAccess())

	d.HandleUpdate(context.Background(), commandUpdate(testUser, "/ask what is up"))

	if len(sender.htmls) != 1 || !strings.Contains(sender.htmls[0], "not enabled") {
		t.Errorf("Expected AI-disabled reply, got %v", sender.htmls)
	}
}

func TestDispatcherHelp(t *testing.T) {
	d, sender := newTestDispatcher(newMemFilters(), newMemAccess())

	d.HandleUpdate(context.Background(), commandUpdate(testUser, "/help"))

	if len(sender.htmls) != 1 || !strings.Contains(sender.htmls[0], "Filter bot") {
		t.Errorf("Expected help text, got %v", sender.htmls)
	}
}

func TestDispatcherCallbackPagination(t *testing.T) {
	filters := newMemFilters()
	ctx := context.Background()
	for _, name := range pageNames(20) {
		filters.Put(ctx, name, &domain.Filter{Text: name})
	}
	d, sender := newTestDispatcher(filters, newMemAccess())

	d.HandleUpdate(ctx, tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb1",
		Data: "filters_2",
		Message: &tgbotapi.Message{
			MessageID: 55,
			Chat:      &tgbotapi.Chat{ID: testChat},
		},
	}})

	if len(sender.callbacks) != 1 || sender.callbacks[0] != "cb1" {
		t.Errorf("Callback not answered: %v", sender.callbacks)
	}
	if len(sender.edits) != 1 || !strings.Contains(sender.edits[0], "filter20") {
		t.Errorf("Expected page 2 edit, got %v", sender.edits)
	}
}

func TestDispatcherCallbackNoop(t *testing.T) {
	d, sender := newTestDispatcher(newMemFilters(), newMemAccess())

	d.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb2",
		Data: "noop",
	}})

	if len(sender.callbacks) != 1 {
		t.Error("Even noop callbacks must be acknowledged")
	}
	if len(sender.edits) != 0 {
		t.Errorf("Noop must not edit, got %v", sender.edits)
	}
}
