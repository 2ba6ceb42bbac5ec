package models

import "time"

type NotificationType string

const (
	NotificationBudget       NotificationType = "budget"
	NotificationSpending     NotificationType = "spending"
	NotificationWarning      NotificationType = "warning"
	NotificationOverspending NotificationType = "overspending"
)

// Notification rows are append-only.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"-"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
}
