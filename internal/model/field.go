package model

import "time"

// Field describes a bookable sports pitch owned by a field owner.
// Operating hours are stored as whole hours in the field's local day;
// slots are generated between OpenHour (inclusive) and CloseHour
// (exclusive).  A field is never deleted while reservations reference
// it – owners deactivate it instead, which hides it from browse and
// blocks new bookings.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user who owns and manages the field.
//  Name          – display name.
//  Description   – optional free-form description.
//  Address       – street address.
//  Area          – city or district used for search filtering.
//  PriceCents    – price for one hour of play, in cents.
//  OpenHour      – first bookable hour of the day (0–23).
//  CloseHour     – hour the field closes (1–24, exclusive).
//  IsActive      – false once the owner soft-deactivates the field.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Field struct {
    ID          uint64    `json:"id"`
    OwnerID     uint64    `json:"owner_id"`
    Name        string    `json:"name"`
    Description *string   `json:"description,omitempty"`
    Address     string    `json:"address"`
    Area        string    `json:"area"`
    PriceCents  uint32    `json:"price_per_hour_cents"`
    OpenHour    int       `json:"open_hour"`
    CloseHour   int       `json:"close_hour"`
    IsActive    bool      `json:"is_active"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
}
