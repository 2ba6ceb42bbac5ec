package db

import (
	"context"
	"fmt"

	"ledgerly-server/src/db"
	"ledgerly-server/src/models"
)

const deviceColumns = `id, user_id, fcm_token, device_name, created_at, last_active`

// UpsertDevice registers token for userID. A token already on file is moved
// to userID and its last_active refreshed; created reports a new row.
func UpsertDevice(ctx context.Context, q db.Querier, userID int64, token, deviceName string) (*models.Device, bool, error) {
	if deviceName == "" {
		deviceName = models.DefaultDeviceName
	}
	query := `
		INSERT INTO user_devices (user_id, fcm_token, device_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (fcm_token) DO UPDATE
		SET user_id = EXCLUDED.user_id,
			device_name = EXCLUDED.device_name,
			last_active = NOW()
		RETURNING ` + deviceColumns + `, (xmax = 0)
	`
	var d models.Device
	var created bool
	err := q.QueryRow(ctx, query, userID, token, deviceName).
		Scan(&d.ID, &d.UserID, &d.FCMToken, &d.DeviceName, &d.CreatedAt, &d.LastActive, &created)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert device: %w", db.MapError(err))
	}
	return &d, created, nil
}

func GetDevicesForUser(ctx context.Context, q db.Querier, userID int64) ([]models.Device, error) {
	rows, err := q.Query(ctx, `SELECT `+deviceColumns+` FROM user_devices WHERE user_id = $1 ORDER BY last_active DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.FCMToken, &d.DeviceName, &d.CreatedAt, &d.LastActive); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func DeleteDeviceByToken(ctx context.Context, q db.Querier, token string) error {
	cmd, err := q.Exec(ctx, `DELETE FROM user_devices WHERE fcm_token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	return mustAffect(cmd.RowsAffected())
}
