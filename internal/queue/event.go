// Package queue defines domain event payloads exchanged over the
// message broker and the background consumer that audits them.
package queue

// Event kinds published to the broker.  Booking events are emitted by
// the reservation service after the corresponding row change commits;
// challenge.accepted is emitted when a match room comes to life.
const (
    KindBookingCreated    = "booking.created"
    KindBookingConfirmed  = "booking.confirmed"
    KindBookingCancelled  = "booking.cancelled"
    KindChallengeAccepted = "challenge.accepted"
)

// Event is the envelope for every domain event.  It carries enough
// information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.  Fields that do not
// apply to a kind are left at their zero value.
type Event struct {
    Kind            string `json:"kind"`
    ReservationID   uint64 `json:"reservation_id,omitempty"`
    FieldID         uint64 `json:"field_id,omitempty"`
    FieldName       string `json:"field_name,omitempty"`
    UserID          uint64 `json:"user_id,omitempty"`
    ChallengeID     uint64 `json:"challenge_id,omitempty"`
    RoomID          uint64 `json:"room_id,omitempty"`
    StartsAt        string `json:"starts_at,omitempty"`
    EndsAt          string `json:"ends_at,omitempty"`
    TotalPriceCents uint32 `json:"total_price_cents,omitempty"`
    OccurredAt      string `json:"occurred_at"`
}
