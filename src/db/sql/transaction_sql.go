package db

import (
	"context"
	"fmt"

	"ledgerly-server/src/db"
	"ledgerly-server/src/models"

	"github.com/jackc/pgx/v5"
)

// transactionSelect joins the display names of the category and budget.
// Callers append the FROM source aliased as t.
const transactionSelect = `
	SELECT t.id, t.user_id, t.type, t.category_id, c.name, t.budget_id, b.name,
		t.amount, t.title, t.date, t.created_at, t.updated_at
`

const transactionJoins = `
	LEFT JOIN categories c ON c.id = t.category_id
	LEFT JOIN budgets b ON b.id = t.budget_id
`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Type,
		&t.CategoryID,
		&t.CategoryName,
		&t.BudgetID,
		&t.BudgetName,
		&t.Amount.Decimal,
		&t.Title,
		&t.Date,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &t, nil
}

func GetTransactionsForUser(ctx context.Context, q db.Querier, userID int64) ([]models.Transaction, error) {
	query := transactionSelect + `FROM transactions t` + transactionJoins + `
		WHERE t.user_id = $1
		ORDER BY t.date DESC, t.created_at DESC
	`
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func GetTransactionByID(ctx context.Context, q db.Querier, userID, id int64) (*models.Transaction, error) {
	query := transactionSelect + `FROM transactions t` + transactionJoins + `WHERE t.id = $1 AND t.user_id = $2`
	return scanTransaction(q.QueryRow(ctx, query, id, userID))
}

// GetTransactionForUpdate row-locks the transaction until the enclosing
// database transaction ends.
func GetTransactionForUpdate(ctx context.Context, q db.Querier, userID, id int64) (*models.Transaction, error) {
	query := transactionSelect + `FROM transactions t` + transactionJoins + `
		WHERE t.id = $1 AND t.user_id = $2
		FOR UPDATE OF t
	`
	return scanTransaction(q.QueryRow(ctx, query, id, userID))
}

func CreateTransaction(ctx context.Context, q db.Querier, txn *models.Transaction) (*models.Transaction, error) {
	query := `
		WITH t AS (
			INSERT INTO transactions (user_id, type, category_id, budget_id, amount, title, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
	` + transactionSelect + `FROM t` + transactionJoins

	t, err := scanTransaction(q.QueryRow(ctx, query,
		txn.UserID, string(txn.Type), txn.CategoryID, txn.BudgetID, txn.Amount.Decimal, txn.Title, txn.Date))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return t, nil
}

func UpdateTransaction(ctx context.Context, q db.Querier, txn *models.Transaction) (*models.Transaction, error) {
	query := `
		WITH t AS (
			UPDATE transactions
			SET type = $1, category_id = $2, budget_id = $3, amount = $4, title = $5, date = $6, updated_at = NOW()
			WHERE id = $7 AND user_id = $8
			RETURNING *
		)
	` + transactionSelect + `FROM t` + transactionJoins

	t, err := scanTransaction(q.QueryRow(ctx, query,
		string(txn.Type), txn.CategoryID, txn.BudgetID, txn.Amount.Decimal, txn.Title, txn.Date, txn.ID, txn.UserID))
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction %d: %w", txn.ID, err)
	}
	return t, nil
}

func DeleteTransaction(ctx context.Context, q db.Querier, userID, id int64) error {
	cmd, err := q.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return mustAffect(cmd.RowsAffected())
}
