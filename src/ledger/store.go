// Package ledger owns every write that moves money: it keeps user totals in
// step with their transactions and raises budget notifications.
package ledger

import (
	"context"
	"errors"

	"ledgerly-server/src/models"
	"ledgerly-server/src/notify"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidBudget   = errors.New("invalid budget")
	ErrInvalidCategory = errors.New("invalid category")
)

// Store runs fn inside one database transaction. A non-nil error from fn
// rolls the whole unit back.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of statements the ledger issues inside a transaction.
// Lookups are scoped to the owning user; a miss returns db.ErrNotFound.
type Tx interface {
	notify.Recorder

	// GetTransactionForUpdate locks the row until the transaction ends.
	GetTransactionForUpdate(ctx context.Context, userID, id int64) (*models.Transaction, error)
	InsertTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error

	// AdjustUserTotals adds d to the stored totals relative to their current
	// values, so concurrent writers serialize on the user row.
	AdjustUserTotals(ctx context.Context, userID int64, d Delta) error

	CategoryExists(ctx context.Context, id int64) (bool, error)
	GetBudget(ctx context.Context, userID, id int64) (*models.Budget, error)
	InsertBudget(ctx context.Context, b *models.Budget) (*models.Budget, error)
	UpdateBudget(ctx context.Context, b *models.Budget) (*models.Budget, error)
	// SumBudgetExpenses totals every expense linked to the budget, regardless of date.
	SumBudgetExpenses(ctx context.Context, budgetID int64) (decimal.Decimal, error)
}
