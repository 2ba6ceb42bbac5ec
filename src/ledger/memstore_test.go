package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"ledgerly-server/src/db"
	"ledgerly-server/src/models"
	"ledgerly-server/src/notify"

	"github.com/shopspring/decimal"
)

var errInjected = errors.New("injected failure")

type memState struct {
	totals        map[int64]Delta
	transactions  map[int64]models.Transaction
	budgets       map[int64]models.Budget
	categories    map[int64]bool
	notifications []models.Notification
	nextID        int64
}

func (s memState) clone() memState {
	return memState{
		totals:        maps.Clone(s.totals),
		transactions:  maps.Clone(s.transactions),
		budgets:       maps.Clone(s.budgets),
		categories:    maps.Clone(s.categories),
		notifications: slices.Clone(s.notifications),
		nextID:        s.nextID,
	}
}

// memStore keeps committed state and hands each WithTx call a private copy,
// which replaces the committed state only when fn succeeds.
type memStore struct {
	mu    sync.Mutex
	state memState

	failTotals int // fail the Nth AdjustUserTotals call in a tx (1-based), 0 = never
	failNotify bool
}

func newMemStore(users ...int64) *memStore {
	s := &memStore{state: memState{
		totals:       map[int64]Delta{},
		transactions: map[int64]models.Transaction{},
		budgets:      map[int64]models.Budget{},
		categories:   map[int64]bool{},
	}}
	for _, id := range users {
		s.state.totals[id] = Delta{}
	}
	return s
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{st: s.state.clone(), store: s}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.st
	return nil
}

func (s *memStore) totals(userID int64) Delta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.totals[userID]
}

func (s *memStore) notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.notifications)
}

func (s *memStore) addBudget(userID int64, name string, limit int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextID++
	id := s.state.nextID
	s.state.budgets[id] = models.Budget{
		ID:     id,
		UserID: userID,
		Name:   name,
		Limit:  models.NewMoney(decimal.NewFromInt(limit)),
	}
	return id
}

func (s *memStore) addCategory() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextID++
	s.state.categories[s.state.nextID] = true
	return s.state.nextID
}

// recomputed sums the committed transactions the way the totals should read.
func (s *memStore) recomputed(userID int64) Delta {
	s.mu.Lock()
	defer s.mu.Unlock()
	var d Delta
	for _, t := range s.state.transactions {
		if t.UserID == userID {
			d = d.Add(effectOf(&t))
		}
	}
	return d
}

type memTx struct {
	st          memState
	store       *memStore
	adjustCalls int
}

func (tx *memTx) id() int64 {
	tx.st.nextID++
	return tx.st.nextID
}

func (tx *memTx) InsertNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if tx.store.failNotify {
		return nil, errInjected
	}
	stored := *n
	stored.ID = tx.id()
	stored.CreatedAt = time.Now()
	tx.st.notifications = append(tx.st.notifications, stored)
	return &stored, nil
}

func (tx *memTx) GetTransactionForUpdate(ctx context.Context, userID, id int64) (*models.Transaction, error) {
	t, ok := tx.st.transactions[id]
	if !ok || t.UserID != userID {
		return nil, db.ErrNotFound
	}
	return &t, nil
}

func (tx *memTx) InsertTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	stored := *t
	stored.ID = tx.id()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	tx.st.transactions[stored.ID] = stored
	return &stored, nil
}

func (tx *memTx) UpdateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	if _, ok := tx.st.transactions[t.ID]; !ok {
		return nil, db.ErrNotFound
	}
	stored := *t
	stored.UpdatedAt = time.Now()
	tx.st.transactions[t.ID] = stored
	return &stored, nil
}

func (tx *memTx) DeleteTransaction(ctx context.Context, userID, id int64) error {
	t, ok := tx.st.transactions[id]
	if !ok || t.UserID != userID {
		return db.ErrNotFound
	}
	delete(tx.st.transactions, id)
	return nil
}

func (tx *memTx) AdjustUserTotals(ctx context.Context, userID int64, d Delta) error {
	tx.adjustCalls++
	if tx.store.failTotals == tx.adjustCalls {
		return errInjected
	}
	cur, ok := tx.st.totals[userID]
	if !ok {
		return db.ErrNotFound
	}
	tx.st.totals[userID] = cur.Add(d)
	return nil
}

func (tx *memTx) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return tx.st.categories[id], nil
}

func (tx *memTx) GetBudget(ctx context.Context, userID, id int64) (*models.Budget, error) {
	b, ok := tx.st.budgets[id]
	if !ok || b.UserID != userID {
		return nil, db.ErrNotFound
	}
	return &b, nil
}

func (tx *memTx) InsertBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	stored := *b
	stored.ID = tx.id()
	tx.st.budgets[stored.ID] = stored
	return &stored, nil
}

func (tx *memTx) UpdateBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	if _, ok := tx.st.budgets[b.ID]; !ok {
		return nil, db.ErrNotFound
	}
	tx.st.budgets[b.ID] = *b
	stored := *b
	return &stored, nil
}

func (tx *memTx) SumBudgetExpenses(ctx context.Context, budgetID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range tx.st.transactions {
		if t.Type == models.TransactionExpense && t.BudgetID != nil && *t.BudgetID == budgetID {
			sum = sum.Add(t.Amount.Decimal)
		}
	}
	return sum, nil
}

type pushLog struct {
	mu     sync.Mutex
	titles []string
}

func (p *pushLog) Push(ctx context.Context, token string, msg notify.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.titles = append(p.titles, msg.Title)
	return nil
}

func (p *pushLog) sent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.titles)
}

type oneDevice struct{}

func (oneDevice) ListDevices(ctx context.Context, userID int64) ([]models.Device, error) {
	return []models.Device{{ID: 1, UserID: userID, FCMToken: "token-1"}}, nil
}

func (oneDevice) DeleteDeviceByToken(ctx context.Context, token string) error { return nil }

func newTestService(store Store) (*Service, *pushLog) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	pushes := &pushLog{}
	return NewService(store, notify.NewDispatcher(oneDevice{}, pushes, l), l), pushes
}
