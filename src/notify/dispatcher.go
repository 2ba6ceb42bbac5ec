// Package notify records user notifications and fans them out to the user's
// registered push devices.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"ledgerly-server/src/logger"
	"ledgerly-server/src/models"

	"golang.org/x/sync/errgroup"
)

// ErrUnregistered is returned by a Pusher when the push service no longer
// recognizes the device token.
var ErrUnregistered = errors.New("push token unregistered")

type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

type Pusher interface {
	Push(ctx context.Context, token string, msg Message) error
}

// Recorder persists a notification row. Both the pool-backed store and a
// ledger transaction satisfy it.
type Recorder interface {
	InsertNotification(ctx context.Context, n *models.Notification) (*models.Notification, error)
}

type DeviceStore interface {
	ListDevices(ctx context.Context, userID int64) ([]models.Device, error)
	DeleteDeviceByToken(ctx context.Context, token string) error
}

const (
	pushConcurrency = 4
	pushTimeout     = 10 * time.Second
)

type Dispatcher struct {
	devices DeviceStore
	pusher  Pusher
	log     *slog.Logger
}

func NewDispatcher(devices DeviceStore, pusher Pusher, l *slog.Logger) *Dispatcher {
	return &Dispatcher{
		devices: devices,
		pusher:  pusher,
		log:     logger.WithComponent(l, logger.ComponentNotify),
	}
}

// Record persists the notification and returns the stored row. It never pushes.
func (d *Dispatcher) Record(ctx context.Context, rec Recorder, userID int64, title, message string, typ models.NotificationType) (*models.Notification, error) {
	return rec.InsertNotification(ctx, &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	})
}

// Notify records the notification, then pushes it to the user's devices.
// Only a persistence failure is returned. It is the standalone entry point
// for notifications raised outside a ledger write; writes that run in a
// database transaction use Record inside it and Push after commit.
func (d *Dispatcher) Notify(ctx context.Context, rec Recorder, userID int64, title, message string, typ models.NotificationType) (*models.Notification, error) {
	n, err := d.Record(ctx, rec, userID, title, message, typ)
	if err != nil {
		return nil, err
	}
	d.Push(ctx, *n)
	return n, nil
}

// Push delivers already-recorded notifications. Failures are logged and
// swallowed; the request that produced the notifications is never affected.
func (d *Dispatcher) Push(ctx context.Context, notes ...models.Notification) {
	if len(notes) == 0 || d.pusher == nil || d.devices == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	devicesByUser := make(map[int64][]models.Device)
	for _, n := range notes {
		devices, ok := devicesByUser[n.UserID]
		if !ok {
			var err error
			devices, err = d.devices.ListDevices(ctx, n.UserID)
			if err != nil {
				d.log.ErrorContext(ctx, "Failed to list devices", logger.FieldUserID, n.UserID, logger.FieldError, err)
				devicesByUser[n.UserID] = nil
				continue
			}
			devicesByUser[n.UserID] = devices
		}
		if len(devices) == 0 {
			d.log.InfoContext(ctx, "No devices found for user, skipping push", logger.FieldUserID, n.UserID, "notification_id", n.ID)
			continue
		}
		d.pushToDevices(ctx, n, devices)
	}
}

func (d *Dispatcher) pushToDevices(ctx context.Context, n models.Notification, devices []models.Device) {
	msg := Message{
		Title: n.Title,
		Body:  n.Message,
		Data: map[string]string{
			"notification_id": strconv.FormatInt(n.ID, 10),
			"type":            string(n.Type),
		},
	}

	var g errgroup.Group
	g.SetLimit(pushConcurrency)
	for _, dev := range devices {
		g.Go(func() error {
			d.pushOne(ctx, n.UserID, dev, msg)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) pushOne(ctx context.Context, userID int64, dev models.Device, msg Message) {
	if dev.FCMToken == "" {
		d.log.WarnContext(ctx, "Device has no push token, skipping", logger.FieldUserID, userID, "device_id", dev.ID)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.ErrorContext(ctx, "Unexpected error sending push", logger.FieldUserID, userID, "device_id", dev.ID, "panic", r)
		}
	}()

	err := d.pusher.Push(ctx, dev.FCMToken, msg)
	switch {
	case err == nil:
		d.log.DebugContext(ctx, "Push sent", logger.FieldUserID, userID, "device_id", dev.ID)
	case errors.Is(err, ErrUnregistered):
		d.log.WarnContext(ctx, "Push token unregistered, removing device", logger.FieldUserID, userID, "device_id", dev.ID)
		if err := d.devices.DeleteDeviceByToken(ctx, dev.FCMToken); err != nil {
			d.log.ErrorContext(ctx, "Failed to remove stale device", "device_id", dev.ID, logger.FieldError, err)
		}
	default:
		d.log.WarnContext(ctx, "Push failed", logger.FieldUserID, userID, "device_id", dev.ID, logger.FieldError, err)
	}
}
