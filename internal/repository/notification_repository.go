package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/zonehub/zonehub/internal/model"
)

// NotificationRepo provides data access to the notifications table.
// Rows are append-mostly: only the is_read flag ever changes, and rows
// are never physically deleted.
type NotificationRepo struct {
    db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given
// database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification row and returns it with generated
// fields populated.
func (r *NotificationRepo) Create(ctx context.Context, userID uint64, category, title, body string) (*model.Notification, error) {
    result, err := r.db.ExecContext(ctx,
        `INSERT INTO notifications (user_id, category, title, body, is_read) VALUES (?, ?, ?, ?, FALSE)`,
        userID, category, title, body,
    )
    if err != nil {
        return nil, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return nil, err
    }
    var n model.Notification
    err = r.db.QueryRowContext(ctx,
        `SELECT id, user_id, category, title, body, is_read, created_at FROM notifications WHERE id = ?`, id,
    ).Scan(&n.ID, &n.UserID, &n.Category, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt)
    if err != nil {
        return nil, err
    }
    return &n, nil
}

// ListByUser returns the user's notifications, newest first.  When
// unreadOnly is true, read rows are filtered out.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, unreadOnly bool) ([]model.Notification, error) {
    query := `SELECT id, user_id, category, title, body, is_read, created_at
              FROM notifications WHERE user_id = ?`
    if unreadOnly {
        query += ` AND is_read = FALSE`
    }
    query += ` ORDER BY created_at DESC`

    rows, err := r.db.QueryContext(ctx, query, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Notification, 0)
    for rows.Next() {
        var n model.Notification
        if err := rows.Scan(&n.ID, &n.UserID, &n.Category, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, n)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// MarkRead flips is_read on for one notification owned by userID.
// Marking an already-read row again is a no-op, never an error; a row
// owned by someone else yields ErrForbidden.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
    var ownerID uint64
    err := r.db.QueryRowContext(ctx, `SELECT user_id FROM notifications WHERE id = ?`, id).Scan(&ownerID)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    if ownerID != userID {
        return ErrForbidden
    }
    _, err = r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = ?`, id)
    return err
}

// MarkAllRead flips is_read on for every unread notification of the
// user.  Idempotent by construction.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE`, userID)
    return err
}

// UnreadCount returns the number of unread notifications for the user.
// Kept as the polling fallback; the primary signal is the live push
// from the fan-out service.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uint64) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE`, userID).Scan(&n)
    return n, err
}
