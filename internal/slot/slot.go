// Package slot generates the bookable time grid for a field's day and
// annotates it against existing reservations.  Slots are derived values:
// they are computed on demand from a field's operating window and are
// never stored.  Everything in this package is pure – no clock reads, no
// I/O – which keeps availability rendering trivially testable.
package slot

import (
    "time"

    "github.com/zonehub/zonehub/internal/model"
)

// Slot is one fixed-length candidate reservation interval within a
// field's operating window.  Available is false when the interval
// intersects a PENDING or CONFIRMED reservation.
type Slot struct {
    Start     time.Time `json:"start"`
    End       time.Time `json:"end"`
    Available bool      `json:"available"`
}

// Generate returns the ordered, non-overlapping slots covering the
// window [openHour, closeHour) on the given date at the requested
// granularity.  Slots are anchored to midnight UTC of the date; a
// partial trailing interval that would cross the close hour is not
// emitted.  The result is empty when the window or granularity is
// degenerate.
func Generate(openHour, closeHour int, date time.Time, granularity time.Duration) []Slot {
    if granularity <= 0 || closeHour <= openHour {
        return nil
    }
    day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
    open := day.Add(time.Duration(openHour) * time.Hour)
    closing := day.Add(time.Duration(closeHour) * time.Hour)

    slots := make([]Slot, 0, closing.Sub(open)/granularity)
    for start := open; !start.Add(granularity).After(closing); start = start.Add(granularity) {
        slots = append(slots, Slot{Start: start, End: start.Add(granularity), Available: true})
    }
    return slots
}

// Annotate marks each slot unavailable when it overlaps a reservation
// that still occupies its interval (PENDING or CONFIRMED).  Cancelled
// reservations never block a slot.  The input slice is returned with
// flags updated in place for convenience.
func Annotate(slots []Slot, reservations []model.Reservation) []Slot {
    for i := range slots {
        for j := range reservations {
            r := &reservations[j]
            if r.Status != model.StatusPending && r.Status != model.StatusConfirmed {
                continue
            }
            if r.Overlaps(slots[i].Start, slots[i].End) {
                slots[i].Available = false
                break
            }
        }
    }
    return slots
}

// Aligned reports whether the interval [start, end) lands exactly on the
// slot grid: both endpoints are whole multiples of the granularity from
// midnight and the interval spans at least one slot.
func Aligned(start, end time.Time, granularity time.Duration) bool {
    if granularity <= 0 || !start.Before(end) {
        return false
    }
    day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
    if start.Sub(day)%granularity != 0 {
        return false
    }
    return end.Sub(start)%granularity == 0
}
