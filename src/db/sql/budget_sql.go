package db

import (
	"context"
	"fmt"

	"ledgerly-server/src/db"
	"ledgerly-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const budgetColumns = `id, user_id, name, image, "limit", start_date, end_date, created_at, updated_at`

// budgetWithUsage adds spent, the sum of expenses dated inside the budget
// window.
const budgetWithUsage = `
	SELECT b.id, b.user_id, b.name, b.image, b."limit", b.start_date, b.end_date, b.created_at, b.updated_at,
		COALESCE(s.spent, 0)
	FROM budgets b
	LEFT JOIN LATERAL (
		SELECT SUM(t.amount) AS spent
		FROM transactions t
		WHERE t.budget_id = b.id
			AND t.type = 'expense'
			AND t.date BETWEEN b.start_date AND b.end_date
	) s ON TRUE
`

func budgetDest(b *models.Budget) []any {
	return []any{
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.Image,
		&b.Limit.Decimal,
		&b.StartDate,
		&b.EndDate,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

func scanBudget(row pgx.Row) (*models.Budget, error) {
	var b models.Budget
	if err := row.Scan(budgetDest(&b)...); err != nil {
		return nil, db.MapError(err)
	}
	setUsage(&b, decimal.Zero)
	return &b, nil
}

func scanBudgetWithUsage(row pgx.Row) (*models.Budget, error) {
	var b models.Budget
	var spent decimal.Decimal
	if err := row.Scan(append(budgetDest(&b), &spent)...); err != nil {
		return nil, db.MapError(err)
	}
	setUsage(&b, spent)
	return &b, nil
}

// setUsage fills the derived fields; remaining never goes below zero.
func setUsage(b *models.Budget, spent decimal.Decimal) {
	b.Spent = models.NewMoney(spent)
	remaining := b.Limit.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	b.Remaining = models.NewMoney(remaining)
}

func CreateBudget(ctx context.Context, q db.Querier, budget *models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, name, image, "limit", start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + budgetColumns

	b, err := scanBudget(q.QueryRow(ctx, query,
		budget.UserID, budget.Name, budget.Image, budget.Limit.Decimal, budget.StartDate, budget.EndDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	return b, nil
}

// GetBudgetByID reads the stored row only; spent and remaining are zero.
func GetBudgetByID(ctx context.Context, q db.Querier, userID, budgetID int64) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND user_id = $2`
	return scanBudget(q.QueryRow(ctx, query, budgetID, userID))
}

func GetBudgetWithUsage(ctx context.Context, q db.Querier, userID, budgetID int64) (*models.Budget, error) {
	return scanBudgetWithUsage(q.QueryRow(ctx, budgetWithUsage+`WHERE b.id = $1 AND b.user_id = $2`, budgetID, userID))
}

func GetAllBudgetsForUser(ctx context.Context, q db.Querier, userID int64) ([]models.Budget, error) {
	rows, err := q.Query(ctx, budgetWithUsage+`WHERE b.user_id = $1 ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudgetWithUsage(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func UpdateBudget(ctx context.Context, q db.Querier, budget *models.Budget) (*models.Budget, error) {
	query := `
		UPDATE budgets
		SET name = $1, image = $2, "limit" = $3, start_date = $4, end_date = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING ` + budgetColumns

	b, err := scanBudget(q.QueryRow(ctx, query,
		budget.Name, budget.Image, budget.Limit.Decimal, budget.StartDate, budget.EndDate, budget.ID, budget.UserID))
	if err != nil {
		return nil, fmt.Errorf("failed to update budget %d: %w", budget.ID, err)
	}
	return b, nil
}

func DeleteBudget(ctx context.Context, q db.Querier, userID, budgetID int64) error {
	cmd, err := q.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, budgetID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return mustAffect(cmd.RowsAffected())
}

// SumBudgetExpenses totals every expense linked to the budget, with no date
// window.
func SumBudgetExpenses(ctx context.Context, q db.Querier, budgetID int64) (decimal.Decimal, error) {
	var spent decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE budget_id = $1 AND type = 'expense'
	`
	if err := q.QueryRow(ctx, query, budgetID).Scan(&spent); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum budget %d: %w", budgetID, err)
	}
	return spent, nil
}
