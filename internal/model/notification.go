package model

import "time"

// Notification categories.  The category drives client-side grouping
// only; the backend treats all categories identically.
const (
    NotifyBooking = "booking"
    NotifyTeam    = "team"
    NotifyPayment = "payment"
    NotifyOther   = "other"
)

// Notification is a per-user inbox entry.  Rows are owned by the
// recipient, mutated only by the mark-read operations and never
// physically deleted.  Every domain event produces its own row; there
// is deliberately no deduplication key.
type Notification struct {
    ID        uint64    `json:"id"`
    UserID    uint64    `json:"user_id"`
    Category  string    `json:"category"`
    Title     string    `json:"title"`
    Body      string    `json:"body"`
    IsRead    bool      `json:"is_read"`
    CreatedAt time.Time `json:"created_at"`
}
