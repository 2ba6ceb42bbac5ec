package ledger

import (
	"context"
	"fmt"

	"ledgerly-server/src/models"

	"github.com/shopspring/decimal"
)

// Delta is a signed change to a user's running totals.
type Delta struct {
	Balance decimal.Decimal
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Effect is what a persisted transaction contributes to its owner's totals.
func Effect(typ models.TransactionType, amount decimal.Decimal) Delta {
	switch typ {
	case models.TransactionIncome:
		return Delta{Balance: amount, Income: amount}
	case models.TransactionExpense:
		return Delta{Balance: amount.Neg(), Expense: amount}
	default:
		return Delta{}
	}
}

func (d Delta) Neg() Delta {
	return Delta{Balance: d.Balance.Neg(), Income: d.Income.Neg(), Expense: d.Expense.Neg()}
}

func (d Delta) Add(o Delta) Delta {
	return Delta{
		Balance: d.Balance.Add(o.Balance),
		Income:  d.Income.Add(o.Income),
		Expense: d.Expense.Add(o.Expense),
	}
}

func (d Delta) IsZero() bool {
	return d.Balance.IsZero() && d.Income.IsZero() && d.Expense.IsZero()
}

func effectOf(t *models.Transaction) Delta {
	return Effect(t.Type, t.Amount.Decimal)
}

// apply adds t's effect to its owner's totals.
func apply(ctx context.Context, tx Tx, t *models.Transaction) error {
	if err := tx.AdjustUserTotals(ctx, t.UserID, effectOf(t)); err != nil {
		return fmt.Errorf("apply transaction %d to user totals: %w", t.ID, err)
	}
	return nil
}

// reverse removes t's effect from its owner's totals.
func reverse(ctx context.Context, tx Tx, t *models.Transaction) error {
	if err := tx.AdjustUserTotals(ctx, t.UserID, effectOf(t).Neg()); err != nil {
		return fmt.Errorf("reverse transaction %d from user totals: %w", t.ID, err)
	}
	return nil
}
