package service

import (
    "context"
    "encoding/json"
    "log"

    "github.com/zonehub/zonehub/internal/model"
)

// NotificationStore is the slice of the notification repository the
// fan-out service depends on.  *repository.NotificationRepo satisfies it.
type NotificationStore interface {
    Create(ctx context.Context, userID uint64, category, title, body string) (*model.Notification, error)
    ListByUser(ctx context.Context, userID uint64, unreadOnly bool) ([]model.Notification, error)
    MarkRead(ctx context.Context, id, userID uint64) error
    MarkAllRead(ctx context.Context, userID uint64) error
    UnreadCount(ctx context.Context, userID uint64) (int, error)
}

// Signaler pushes a payload to every live session of a user.  The ws
// hub satisfies it.
type Signaler interface {
    SendToUser(userID uint64, payload []byte)
}

// NotificationService is the fan-out: it persists one notification row
// per domain event and pushes a low-latency signal to any connected
// session of the recipient.  The push replaces count polling as the
// primary mechanism; the unread-count endpoint remains as a fallback.
//
// Persistence failures propagate to the triggering operation so a
// committed domain event can never lose its notification silently.
// Duplicate rows for repeated events are by design – there is no dedup
// key, each call corresponds to a distinct event.
type NotificationService struct {
    store  NotificationStore
    signal Signaler
}

// NewNotificationService wires the fan-out.  signal may be nil when no
// live channel exists (tests).
func NewNotificationService(store NotificationStore, signal Signaler) *NotificationService {
    if store == nil {
        panic("nil store passed to NewNotificationService")
    }
    return &NotificationService{store: store, signal: signal}
}

// Notify persists the notification and then signals the recipient's
// live sessions.  The signal is best-effort; only persistence failures
// are reported to the caller.
func (s *NotificationService) Notify(ctx context.Context, userID uint64, category, title, body string) error {
    n, err := s.store.Create(ctx, userID, category, title, body)
    if err != nil {
        return err
    }
    if s.signal == nil {
        return nil
    }
    payload, err := json.Marshal(map[string]any{
        "type":    "notification",
        "payload": n,
    })
    if err != nil {
        log.Printf("notify: marshal signal failed: %v", err)
        return nil
    }
    s.signal.SendToUser(userID, payload)
    return nil
}

// List returns the recipient's notifications, optionally unread only.
func (s *NotificationService) List(ctx context.Context, userID uint64, unreadOnly bool) ([]model.Notification, error) {
    return s.store.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead marks one notification read.  Idempotent.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint64) error {
    return s.store.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every unread notification of the user read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint64) error {
    return s.store.MarkAllRead(ctx, userID)
}

// UnreadCount is the polling fallback for clients without a live
// connection.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint64) (int, error) {
    return s.store.UnreadCount(ctx, userID)
}
