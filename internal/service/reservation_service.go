// Package service orchestrates the booking engine and the match
// coordination channel on top of the repository layer.  Services accept
// narrow store interfaces so the state-machine and concurrency rules
// can be exercised against in-memory fakes in tests.
package service

import (
    "context"
    "fmt"
    "log"
    "time"

    "github.com/zonehub/zonehub/internal/model"
    "github.com/zonehub/zonehub/internal/queue"
    "github.com/zonehub/zonehub/internal/repository"
    "github.com/zonehub/zonehub/internal/slot"
)

// ValidationError reports a malformed request the caller can fix and
// resubmit (bad interval, interval in the past, inactive field).
type ValidationError struct {
    Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) error {
    return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ReservationStore is the slice of the reservation repository the
// service depends on.  *repository.ReservationRepo satisfies it.
type ReservationStore interface {
    TryReserve(ctx context.Context, fieldID, userID uint64, start, end time.Time, priceCents uint32) (*model.Reservation, error)
    UpdateStatus(ctx context.Context, id uint64, expected, next string) (*model.Reservation, error)
    GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
    ListByField(ctx context.Context, fieldID uint64) ([]model.Reservation, error)
    ListActiveForDay(ctx context.Context, fieldID uint64, date time.Time) ([]model.Reservation, error)
    CountActiveByField(ctx context.Context, fieldID uint64) (int, error)
    ExpirePending(ctx context.Context) (int64, error)
}

// FieldStore is the slice of the field repository the service needs.
type FieldStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Field, error)
}

// Notifier delivers a notification to a user.  Implemented by
// NotificationService; failures propagate so a domain event is never
// silently dropped.
type Notifier interface {
    Notify(ctx context.Context, userID uint64, category, title, body string) error
}

// PublishFunc sends a domain event to the broker.  queue.Publish is the
// production implementation; publish errors are logged and tolerated.
type PublishFunc func(ctx context.Context, ev queue.Event) error

// ReservationService implements the booking state machine:
//
//	PENDING --(owner confirms)--> CONFIRMED --(time passes)--> COMPLETED
//	PENDING|CONFIRMED --(owner or requester cancels)--> CANCELLED
//
// CANCELLED is terminal; COMPLETED is a read-time projection and never
// stored.  All writes funnel through the store's field-scoped critical
// section, so the service itself holds no locks.
type ReservationService struct {
    reservations ReservationStore
    fields       FieldStore
    notifier     Notifier
    publish      PublishFunc
    granularity  time.Duration
    lockWait     time.Duration
    now          func() time.Time
}

// NewReservationService wires the service.  publish may be nil to
// disable event emission (tests, broker-less deployments).
func NewReservationService(reservations ReservationStore, fields FieldStore, notifier Notifier, publish PublishFunc, granularity, lockWait time.Duration) *ReservationService {
    if reservations == nil || fields == nil || notifier == nil {
        panic("nil dependency passed to NewReservationService")
    }
    return &ReservationService{
        reservations: reservations,
        fields:       fields,
        notifier:     notifier,
        publish:      publish,
        granularity:  granularity,
        lockWait:     lockWait,
        now:          func() time.Time { return time.Now().UTC() },
    }
}

// CreateBooking validates the requested interval against the field's
// operating window and the slot grid, then attempts the atomic
// check-and-insert.  On overlap the caller receives ErrSlotTaken and
// must re-fetch availability rather than blindly retry; when the field
// lock cannot be acquired within the configured bound the caller
// receives ErrBusy, which is retryable as-is.
func (s *ReservationService) CreateBooking(ctx context.Context, userID, fieldID uint64, start, end time.Time) (*model.Reservation, error) {
    field, err := s.fields.GetByID(ctx, fieldID)
    if err != nil {
        return nil, err
    }
    if !field.IsActive {
        return nil, invalid("field is not accepting bookings")
    }
    start, end = start.UTC(), end.UTC()
    if !start.Before(end) {
        return nil, invalid("start must be before end")
    }
    if !slot.Aligned(start, end, s.granularity) {
        return nil, invalid("interval is not aligned to the %s slot grid", s.granularity)
    }
    if start.Before(s.now()) {
        return nil, invalid("cannot book a slot in the past")
    }
    dayOpen := time.Date(start.Year(), start.Month(), start.Day(), field.OpenHour, 0, 0, 0, time.UTC)
    dayClose := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC).
        Add(time.Duration(field.CloseHour) * time.Hour)
    if start.Before(dayOpen) || end.After(dayClose) {
        return nil, invalid("interval is outside the field's operating hours (%02d:00-%02d:00)", field.OpenHour, field.CloseHour)
    }

    price := totalPrice(field.PriceCents, end.Sub(start))

    lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
    defer cancel()
    res, err := s.reservations.TryReserve(lockCtx, fieldID, userID, start, end, price)
    if err != nil {
        return nil, err
    }

    s.emit(ctx, queue.KindBookingCreated, res, field)
    err = s.notifier.Notify(ctx, field.OwnerID, model.NotifyBooking,
        "New booking request",
        fmt.Sprintf("%s is requested for %s", field.Name, intervalText(res)))
    if err != nil {
        // The reservation is committed; surfacing the error keeps the
        // contract that a confirmed write never hides a lost event.
        return nil, err
    }
    return res, nil
}

// ConfirmBooking moves a PENDING reservation to CONFIRMED.  Only the
// field owner holds that capability.
func (s *ReservationService) ConfirmBooking(ctx context.Context, actorID, reservationID uint64) (*model.Reservation, error) {
    _, field, err := s.load(ctx, reservationID)
    if err != nil {
        return nil, err
    }
    if field.OwnerID != actorID {
        return nil, repository.ErrForbidden
    }
    updated, err := s.reservations.UpdateStatus(ctx, reservationID, model.StatusPending, model.StatusConfirmed)
    if err != nil {
        return nil, err
    }
    s.emit(ctx, queue.KindBookingConfirmed, updated, field)
    err = s.notifier.Notify(ctx, updated.UserID, model.NotifyBooking,
        "Booking confirmed",
        fmt.Sprintf("Your booking of %s for %s is confirmed", field.Name, intervalText(updated)))
    if err != nil {
        return nil, err
    }
    return updated, nil
}

// CancelBooking moves a live reservation to CANCELLED.  Both the field
// owner and the requester hold that capability; terminal states reject
// the transition with ErrStatusConflict.
func (s *ReservationService) CancelBooking(ctx context.Context, actorID, reservationID uint64) (*model.Reservation, error) {
    res, field, err := s.load(ctx, reservationID)
    if err != nil {
        return nil, err
    }
    if field.OwnerID != actorID && res.UserID != actorID {
        return nil, repository.ErrForbidden
    }
    if res.EffectiveStatus(s.now()) == model.StatusCompleted || res.Status == model.StatusCancelled {
        return nil, repository.ErrStatusConflict
    }
    // CAS against the freshly read status; a concurrent transition in
    // between still fails the swap.
    updated, err := s.reservations.UpdateStatus(ctx, reservationID, res.Status, model.StatusCancelled)
    if err != nil {
        return nil, err
    }
    s.emit(ctx, queue.KindBookingCancelled, updated, field)
    counterparty := updated.UserID
    if actorID == updated.UserID {
        counterparty = field.OwnerID
    }
    err = s.notifier.Notify(ctx, counterparty, model.NotifyBooking,
        "Booking cancelled",
        fmt.Sprintf("The booking of %s for %s was cancelled", field.Name, intervalText(updated)))
    if err != nil {
        return nil, err
    }
    return updated, nil
}

// Availability renders the slot grid of a field for one UTC day,
// annotated against live reservations.
func (s *ReservationService) Availability(ctx context.Context, fieldID uint64, date time.Time) ([]slot.Slot, error) {
    field, err := s.fields.GetByID(ctx, fieldID)
    if err != nil {
        return nil, err
    }
    active, err := s.reservations.ListActiveForDay(ctx, fieldID, date)
    if err != nil {
        return nil, err
    }
    slots := slot.Generate(field.OpenHour, field.CloseHour, date, s.granularity)
    return slot.Annotate(slots, active), nil
}

// ListForUser returns the requester's bookings.
func (s *ReservationService) ListForUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    return s.reservations.ListByUser(ctx, userID)
}

// ListForField returns every booking on a field for its owner.
func (s *ReservationService) ListForField(ctx context.Context, actorID, fieldID uint64) ([]model.Reservation, error) {
    field, err := s.fields.GetByID(ctx, fieldID)
    if err != nil {
        return nil, err
    }
    if field.OwnerID != actorID {
        return nil, repository.ErrForbidden
    }
    return s.reservations.ListByField(ctx, fieldID)
}

// StartExpiryLoop sweeps over-age PENDING reservations on a fixed
// interval until ctx is cancelled.  TryReserve performs the same sweep
// per field inside its critical section; the loop keeps listings tidy
// for fields with no booking traffic.
func (s *ReservationService) StartExpiryLoop(ctx context.Context, every time.Duration) {
    ticker := time.NewTicker(every)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            n, err := s.reservations.ExpirePending(ctx)
            if err != nil {
                log.Printf("booking: pending sweep failed: %v", err)
                continue
            }
            if n > 0 {
                log.Printf("booking: auto-cancelled %d stale pending reservations", n)
            }
        }
    }
}

func (s *ReservationService) load(ctx context.Context, reservationID uint64) (*model.Reservation, *model.Field, error) {
    res, err := s.reservations.GetByID(ctx, reservationID)
    if err != nil {
        return nil, nil, err
    }
    field, err := s.fields.GetByID(ctx, res.FieldID)
    if err != nil {
        return nil, nil, err
    }
    return res, field, nil
}

func (s *ReservationService) emit(ctx context.Context, kind string, res *model.Reservation, field *model.Field) {
    if s.publish == nil {
        return
    }
    ev := queue.Event{
        Kind:            kind,
        ReservationID:   res.ID,
        FieldID:         field.ID,
        FieldName:       field.Name,
        UserID:          res.UserID,
        StartsAt:        res.StartTime.Format(time.RFC3339),
        EndsAt:          res.EndTime.Format(time.RFC3339),
        TotalPriceCents: res.PriceCents,
        OccurredAt:      s.now().Format(time.RFC3339),
    }
    if err := s.publish(ctx, ev); err != nil {
        log.Printf("booking: publish %s failed: %v", kind, err)
    }
}

// totalPrice charges the hourly rate proportionally to the interval
// length, rounding to whole cents.
func totalPrice(hourlyCents uint32, d time.Duration) uint32 {
    return uint32(int64(hourlyCents) * int64(d/time.Minute) / 60)
}

func intervalText(res *model.Reservation) string {
    return fmt.Sprintf("%s - %s",
        res.StartTime.Format("2006-01-02 15:04"),
        res.EndTime.Format("15:04"))
}
