package models

import "time"

type Budget struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	Image     *string   `json:"image"`
	Limit     Money     `json:"limit"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Derived on read, never stored.
	Spent     Money `json:"spent"`
	Remaining Money `json:"remaining"`
}
