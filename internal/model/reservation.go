package model

import "time"

// Reservation status values as stored in the database.  COMPLETED is a
// read-time projection (see Reservation.EffectiveStatus) and is never
// written to the status column: confirm/cancel compare-and-swap against
// the stored value only, so the projection can never invalidate a CAS.
const (
    StatusPending   = "PENDING"
    StatusConfirmed = "CONFIRMED"
    StatusCancelled = "CANCELLED"
    StatusCompleted = "COMPLETED"
)

// Reservation records a user's booking of a field for a half-open time
// interval [StartTime, EndTime).  The booking subsystem guarantees that
// for a given field no two reservations with status PENDING or
// CONFIRMED overlap.
//
// Fields:
//  ID         – primary key identifier.
//  FieldID    – field being booked.
//  UserID     – requester who created the booking.
//  StartTime  – start of the interval (inclusive), UTC.
//  EndTime    – end of the interval (exclusive), UTC.
//  Status     – stored state (PENDING, CONFIRMED, CANCELLED).
//  PriceCents – total price for the whole interval, in cents.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Reservation struct {
    ID         uint64    `json:"id"`
    FieldID    uint64    `json:"field_id"`
    UserID     uint64    `json:"user_id"`
    StartTime  time.Time `json:"start_time"`
    EndTime    time.Time `json:"end_time"`
    Status     string    `json:"status"`
    PriceCents uint32    `json:"total_price_cents"`
    CreatedAt  time.Time `json:"created_at"`
    UpdatedAt  time.Time `json:"updated_at"`
}

// EffectiveStatus returns the status as surfaced to clients: a CONFIRMED
// reservation whose end time has passed reads as COMPLETED.
func (r *Reservation) EffectiveStatus(now time.Time) string {
    if r.Status == StatusConfirmed && !now.Before(r.EndTime) {
        return StatusCompleted
    }
    return r.Status
}

// Overlaps reports whether the reservation's interval intersects the
// half-open interval [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
    return r.StartTime.Before(end) && start.Before(r.EndTime)
}
