package db

import (
	"context"
	"fmt"

	"ledgerly-server/src/db"
	"ledgerly-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, email, name, image, password_hash, is_staff, is_active, date_joined,
	balance, income_total, expense_total`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Image,
		&u.PasswordHash,
		&u.IsStaff,
		&u.IsActive,
		&u.DateJoined,
		&u.Balance.Decimal,
		&u.IncomeTotal.Decimal,
		&u.ExpenseTotal.Decimal,
	)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &u, nil
}

func CreateUser(ctx context.Context, q db.Querier, email, name string, image *string, passwordHash []byte) (*models.User, error) {
	query := `
		INSERT INTO users (email, name, image, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := scanUser(q.QueryRow(ctx, query, email, name, image, passwordHash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func GetUserByID(ctx context.Context, q db.Querier, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.QueryRow(ctx, query, id))
}

func GetUserByEmail(ctx context.Context, q db.Querier, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(q.QueryRow(ctx, query, email))
}

// UpdateUserProfile writes the editable profile fields. Totals are never
// written here.
func UpdateUserProfile(ctx context.Context, q db.Querier, id int64, email, name string, image *string) (*models.User, error) {
	query := `
		UPDATE users
		SET email = $1, name = $2, image = $3
		WHERE id = $4
		RETURNING ` + userColumns

	u, err := scanUser(q.QueryRow(ctx, query, email, name, image, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return u, nil
}

func UpdateUserPassword(ctx context.Context, q db.Querier, id int64, passwordHash []byte) error {
	cmd, err := q.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return mustAffect(cmd.RowsAffected())
}

// AdjustUserTotals adds the deltas to the stored totals in one relative
// UPDATE; the row lock it takes serializes concurrent writers.
func AdjustUserTotals(ctx context.Context, q db.Querier, id int64, balance, income, expense decimal.Decimal) error {
	query := `
		UPDATE users
		SET balance = balance + $1,
			income_total = income_total + $2,
			expense_total = expense_total + $3
		WHERE id = $4
	`
	cmd, err := q.Exec(ctx, query, balance, income, expense, id)
	if err != nil {
		return fmt.Errorf("failed to adjust totals for user %d: %w", id, err)
	}
	return mustAffect(cmd.RowsAffected())
}

func DeleteUser(ctx context.Context, q db.Querier, id int64) error {
	cmd, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return mustAffect(cmd.RowsAffected())
}
