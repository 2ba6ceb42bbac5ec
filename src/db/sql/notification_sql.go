package db

import (
	"context"
	"fmt"

	"ledgerly-server/src/db"
	"ledgerly-server/src/models"

	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, user_id, title, message, type, created_at`

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.CreatedAt); err != nil {
		return nil, db.MapError(err)
	}
	return &n, nil
}

func CreateNotification(ctx context.Context, q db.Querier, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, title, message, type)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + notificationColumns

	stored, err := scanNotification(q.QueryRow(ctx, query, n.UserID, n.Title, n.Message, string(n.Type)))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return stored, nil
}

func GetNotificationsForUser(ctx context.Context, q db.Querier, userID int64) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notes := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func GetNotificationByID(ctx context.Context, q db.Querier, userID, id int64) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1 AND user_id = $2`
	return scanNotification(q.QueryRow(ctx, query, id, userID))
}
