package ledger

import (
	"context"
	"fmt"

	"ledgerly-server/src/models"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(80)
)

// Usage is a budget's spend measured against its limit.
type Usage struct {
	Limit   decimal.Decimal
	Spent   decimal.Decimal
	Percent decimal.Decimal
}

// MeasureUsage computes spent/limit as a percentage. A zero or negative limit
// yields 0%.
func MeasureUsage(limit, spent decimal.Decimal) Usage {
	u := Usage{Limit: limit, Spent: spent, Percent: decimal.Zero}
	if limit.IsPositive() {
		u.Percent = spent.Div(limit).Mul(hundred)
	}
	return u
}

func (u Usage) Warning() bool {
	return u.Percent.GreaterThanOrEqual(warningThreshold) && u.Percent.LessThan(hundred)
}

func (u Usage) Overspending() bool {
	return u.Percent.GreaterThan(hundred)
}

func (u Usage) Overspent() decimal.Decimal {
	return u.Spent.Sub(u.Limit)
}

type Alert struct {
	Title   string
	Message string
	Type    models.NotificationType
}

// BudgetAlerts lists the notifications owed for one expense of amount saved
// against budget. The spending alert is unconditional; warning and
// overspending are evaluated independently.
func BudgetAlerts(budget string, amount decimal.Decimal, u Usage) []Alert {
	alerts := []Alert{{
		Title:   "Budget Spending",
		Message: fmt.Sprintf("You spent %s on '%s' budget.", FormatMoney(amount), budget),
		Type:    models.NotificationSpending,
	}}
	if u.Warning() {
		alerts = append(alerts, Alert{
			Title:   "Budget Warning",
			Message: fmt.Sprintf("Warning: You've used %s%% of your '%s' budget.", u.Percent.RoundBank(1).StringFixed(1), budget),
			Type:    models.NotificationWarning,
		})
	}
	if u.Overspending() {
		alerts = append(alerts, Alert{
			Title:   "Budget Overspent",
			Message: fmt.Sprintf("Overspent on '%s' by %s.", budget, FormatMoney(u.Overspent())),
			Type:    models.NotificationOverspending,
		})
	}
	return alerts
}

// FormatMoney renders an amount with thousands separators and two decimals.
func FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return humanize.FormatFloat("#,###.##", f)
}

// monitorBudget records the alerts for t if it is an expense against a
// budget. The caller pushes the returned notifications after commit.
func (s *Service) monitorBudget(ctx context.Context, tx Tx, t *models.Transaction) ([]models.Notification, error) {
	if t.Type != models.TransactionExpense || t.BudgetID == nil {
		return nil, nil
	}

	budget, err := tx.GetBudget(ctx, t.UserID, *t.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("load budget %d: %w", *t.BudgetID, err)
	}
	spent, err := tx.SumBudgetExpenses(ctx, budget.ID)
	if err != nil {
		return nil, fmt.Errorf("sum budget %d expenses: %w", budget.ID, err)
	}

	usage := MeasureUsage(budget.Limit.Decimal, spent)
	s.log.DebugContext(ctx, "Budget usage evaluated",
		"budget_id", budget.ID,
		"spent", usage.Spent.StringFixed(2),
		"limit", usage.Limit.StringFixed(2),
		"percent", usage.Percent.StringFixed(1),
	)

	var notes []models.Notification
	for _, a := range BudgetAlerts(budget.Name, t.Amount.Decimal, usage) {
		n, err := s.dispatcher.Record(ctx, tx, t.UserID, a.Title, a.Message, a.Type)
		if err != nil {
			return nil, fmt.Errorf("record %s notification: %w", a.Type, err)
		}
		notes = append(notes, *n)
	}
	return notes, nil
}
