package db

import (
	"context"

	"ledgerly-server/src/db"
	"ledgerly-server/src/ledger"
	"ledgerly-server/src/models"
	"ledgerly-server/src/notify"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store backs the ledger service and the notification dispatcher with the
// connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithTx runs fn in one database transaction, committing only if fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ledgerTx{q: tx})
	})
}

func (s *Store) ListDevices(ctx context.Context, userID int64) ([]models.Device, error) {
	return GetDevicesForUser(ctx, s.pool, userID)
}

func (s *Store) DeleteDeviceByToken(ctx context.Context, token string) error {
	return DeleteDeviceByToken(ctx, s.pool, token)
}

// InsertNotification writes on the pool so the Store can serve as the
// Recorder for Dispatcher.Notify.
func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	return CreateNotification(ctx, s.pool, n)
}

type ledgerTx struct {
	q db.Querier
}

func (t ledgerTx) InsertNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	return CreateNotification(ctx, t.q, n)
}

func (t ledgerTx) GetTransactionForUpdate(ctx context.Context, userID, id int64) (*models.Transaction, error) {
	return GetTransactionForUpdate(ctx, t.q, userID, id)
}

func (t ledgerTx) InsertTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	return CreateTransaction(ctx, t.q, txn)
}

func (t ledgerTx) UpdateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	return UpdateTransaction(ctx, t.q, txn)
}

func (t ledgerTx) DeleteTransaction(ctx context.Context, userID, id int64) error {
	return DeleteTransaction(ctx, t.q, userID, id)
}

func (t ledgerTx) AdjustUserTotals(ctx context.Context, userID int64, d ledger.Delta) error {
	return AdjustUserTotals(ctx, t.q, userID, d.Balance, d.Income, d.Expense)
}

func (t ledgerTx) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return CategoryExists(ctx, t.q, id)
}

func (t ledgerTx) GetBudget(ctx context.Context, userID, id int64) (*models.Budget, error) {
	return GetBudgetByID(ctx, t.q, userID, id)
}

func (t ledgerTx) InsertBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	return CreateBudget(ctx, t.q, b)
}

func (t ledgerTx) UpdateBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	return UpdateBudget(ctx, t.q, b)
}

func (t ledgerTx) SumBudgetExpenses(ctx context.Context, budgetID int64) (decimal.Decimal, error) {
	return SumBudgetExpenses(ctx, t.q, budgetID)
}

var (
	_ ledger.Store       = (*Store)(nil)
	_ ledger.Tx          = ledgerTx{}
	_ notify.DeviceStore = (*Store)(nil)
	_ notify.Recorder    = (*Store)(nil)
)
