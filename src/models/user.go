package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Image        *string   `json:"image"`
	PasswordHash []byte    `json:"-"`
	IsStaff      bool      `json:"-"`
	IsActive     bool      `json:"-"`
	DateJoined   time.Time `json:"date_joined"`
	Balance      Money     `json:"balance"`
	IncomeTotal  Money     `json:"income_total"`
	ExpenseTotal Money     `json:"expense_total"`
}

// UserProfile is the /users/me/ representation with nested transactions.
type UserProfile struct {
	User
	Transactions []Transaction `json:"transactions"`
}
