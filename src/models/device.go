package models

import "time"

const DefaultDeviceName = "Unknown Device"

type Device struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	FCMToken   string    `json:"fcm_token"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}
