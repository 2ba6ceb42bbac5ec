package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledgerly-server/src/db"
	"ledgerly-server/src/logger"
	"ledgerly-server/src/models"
	"ledgerly-server/src/notify"

	"github.com/shopspring/decimal"
)

var ErrInvalidTransaction = errors.New("invalid transaction")

// Service is the write path for transactions and budgets. Every write runs
// in one store transaction; pushes happen after commit.
type Service struct {
	store      Store
	dispatcher *notify.Dispatcher
	log        *slog.Logger
}

func NewService(store Store, dispatcher *notify.Dispatcher, l *slog.Logger) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		log:        logger.WithComponent(l, logger.ComponentLedger),
	}
}

type TransactionInput struct {
	Type       models.TransactionType
	CategoryID *int64
	BudgetID   *int64
	Amount     decimal.Decimal
	Title      string
	Date       time.Time
}

func (s *Service) CreateTransaction(ctx context.Context, userID int64, in TransactionInput) (*models.Transaction, error) {
	t := &models.Transaction{
		UserID:     userID,
		Type:       in.Type,
		CategoryID: in.CategoryID,
		BudgetID:   in.BudgetID,
		Amount:     models.NewMoney(in.Amount),
		Title:      in.Title,
		Date:       in.Date,
	}
	if t.Title == "" {
		t.Title = models.DefaultTransactionTitle
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}

	var saved *models.Transaction
	var notes []models.Notification
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if err := checkTransaction(ctx, tx, t); err != nil {
			return err
		}
		var err error
		if saved, err = tx.InsertTransaction(ctx, t); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if err := apply(ctx, tx, saved); err != nil {
			return err
		}
		notes, err = s.monitorBudget(ctx, tx, saved)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Transaction created", logger.FieldUserID, userID, "transaction_id", saved.ID, "type", saved.Type, "amount", saved.Amount.StringFixed(2))
	s.dispatcher.Push(ctx, notes...)
	return saved, nil
}

// UpdateTransaction reverses the stored transaction's effect, lets change
// edit a copy of it, persists the copy and applies the new effect, all in
// one store transaction.
func (s *Service) UpdateTransaction(ctx context.Context, userID, id int64, change func(t *models.Transaction) error) (*models.Transaction, error) {
	var saved *models.Transaction
	var notes []models.Notification
	err := s.store.WithTx(ctx, func(tx Tx) error {
		old, err := tx.GetTransactionForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		next := *old
		if err := change(&next); err != nil {
			return err
		}
		next.ID, next.UserID = old.ID, old.UserID
		if err := checkTransaction(ctx, tx, &next); err != nil {
			return err
		}

		if err := reverse(ctx, tx, old); err != nil {
			return err
		}
		if saved, err = tx.UpdateTransaction(ctx, &next); err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}
		if err := apply(ctx, tx, saved); err != nil {
			return err
		}
		notes, err = s.monitorBudget(ctx, tx, saved)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Transaction updated", logger.FieldUserID, userID, "transaction_id", id)
	s.dispatcher.Push(ctx, notes...)
	return saved, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, userID, id int64) error {
	err := s.store.WithTx(ctx, func(tx Tx) error {
		old, err := tx.GetTransactionForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := reverse(ctx, tx, old); err != nil {
			return err
		}
		if err := tx.DeleteTransaction(ctx, userID, id); err != nil {
			return fmt.Errorf("delete transaction %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "Transaction deleted", logger.FieldUserID, userID, "transaction_id", id)
	return nil
}

func checkTransaction(ctx context.Context, tx Tx, t *models.Transaction) error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidTransaction)
	}
	if t.CategoryID != nil {
		ok, err := tx.CategoryExists(ctx, *t.CategoryID)
		if err != nil {
			return fmt.Errorf("check category %d: %w", *t.CategoryID, err)
		}
		if !ok {
			return ErrInvalidCategory
		}
	}
	if t.BudgetID != nil {
		_, err := tx.GetBudget(ctx, t.UserID, *t.BudgetID)
		switch {
		case errors.Is(err, db.ErrNotFound):
			return ErrInvalidBudget
		case err != nil:
			return fmt.Errorf("check budget %d: %w", *t.BudgetID, err)
		}
	}
	return nil
}

func (s *Service) CreateBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	var created *models.Budget
	var note *models.Notification
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if created, err = tx.InsertBudget(ctx, b); err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
		note, err = s.dispatcher.Record(ctx, tx, created.UserID,
			"New Budget Created",
			fmt.Sprintf("You created a new budget called '%s'.", created.Name),
			models.NotificationBudget)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "Budget created", logger.FieldUserID, created.UserID, "budget_id", created.ID)
	s.dispatcher.Push(ctx, *note)
	return created, nil
}

func (s *Service) UpdateBudget(ctx context.Context, userID, id int64, change func(b *models.Budget) error) (*models.Budget, error) {
	var updated *models.Budget
	var note *models.Notification
	err := s.store.WithTx(ctx, func(tx Tx) error {
		current, err := tx.GetBudget(ctx, userID, id)
		if err != nil {
			return err
		}
		next := *current
		if err := change(&next); err != nil {
			return err
		}
		next.ID, next.UserID = current.ID, current.UserID
		if updated, err = tx.UpdateBudget(ctx, &next); err != nil {
			return fmt.Errorf("update budget %d: %w", id, err)
		}
		note, err = s.dispatcher.Record(ctx, tx, userID,
			"Budget Updated",
			fmt.Sprintf("Your budget '%s' was updated successfully.", updated.Name),
			models.NotificationBudget)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "Budget updated", logger.FieldUserID, userID, "budget_id", id)
	s.dispatcher.Push(ctx, *note)
	return updated, nil
}
