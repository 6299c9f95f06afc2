package model

import "time"

// Message kinds.  System messages carry no sender and are produced by
// the backend itself (e.g. when a challenge is accepted).
const (
    MessageKindUser   = "user"
    MessageKindSystem = "system"
)

// Room is the persistent half of a match chat: a room row exists from
// the moment a challenge is accepted.  Which users are currently
// connected to the room is process state owned by the websocket hub and
// is never written to the database.
type Room struct {
    ID          uint64    `json:"id"`
    ChallengeID uint64    `json:"challenge_id"`
    Status      string    `json:"status"` // active, archived
    CreatedAt   time.Time `json:"created_at"`
}

// Message is one entry in a room's append-only log.  Messages are never
// edited or deleted; ordering is fixed at insert time and replayed in
// the same order by history reads.
type Message struct {
    ID        uint64    `json:"id"`
    RoomID    uint64    `json:"room_id"`
    SenderID  *uint64   `json:"sender_id,omitempty"` // nil for system messages
    Kind      string    `json:"kind"`
    Body      string    `json:"body"`
    CreatedAt time.Time `json:"created_at"`
}
