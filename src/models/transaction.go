package models

import "time"

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

const DefaultTransactionTitle = "Untitled Transaction"

type Transaction struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user"`
	Type         TransactionType `json:"type"`
	CategoryID   *int64          `json:"category"`
	CategoryName *string         `json:"category_name"`
	BudgetID     *int64          `json:"budget"`
	BudgetName   *string         `json:"budget_name"`
	Amount       Money           `json:"amount"`
	Title        string          `json:"title"`
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
