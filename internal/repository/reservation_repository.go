package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/zonehub/zonehub/internal/model"
)

// ReservationRepo provides data access to the reservations table and
// owns the one serialization point of the booking engine: the
// overlap-check-and-insert in TryReserve.  All timestamp columns are
// stored in UTC.
type ReservationRepo struct {
    db         *sql.DB
    pendingTTL time.Duration // grace period before an unconfirmed PENDING row is swept
}

// NewReservationRepo returns a new ReservationRepo bound to the given
// database.  pendingTTL controls how long a PENDING reservation may
// wait for owner confirmation before the sweep cancels it.
func NewReservationRepo(db *sql.DB, pendingTTL time.Duration) *ReservationRepo {
    return &ReservationRepo{db: db, pendingTTL: pendingTTL}
}

// DB exposes the underlying handle for callers that need to compose
// transactions across repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationCols = `id, field_id, user_id, start_time, end_time, status, total_price_cents, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
    var res model.Reservation
    err := row.Scan(&res.ID, &res.FieldID, &res.UserID, &res.StartTime, &res.EndTime,
        &res.Status, &res.PriceCents, &res.CreatedAt, &res.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &res, nil
}

// TryReserve atomically checks the no-overlap invariant and inserts a
// new PENDING reservation for [start, end) on the given field.  The
// whole operation runs in one transaction that first locks the field
// row with SELECT ... FOR UPDATE, so concurrent attempts on the same
// field serialize while different fields proceed independently.  Two
// racing calls for overlapping intervals therefore end with exactly one
// inserted row and one ErrSlotTaken.
//
// The caller bounds the lock wait through ctx; when the deadline
// expires while waiting, ErrBusy is returned instead of blocking
// indefinitely.  Expired PENDING rows are swept inside the same
// critical section so a stale hold can never block a new booking.
func (r *ReservationRepo) TryReserve(ctx context.Context, fieldID, userID uint64, start, end time.Time, priceCents uint32) (*model.Reservation, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, busyOr(ctx, err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Field-scoped critical section. Lock waits are bounded by ctx.
    var locked uint64
    err = tx.QueryRowContext(ctx, `SELECT id FROM fields WHERE id = ? FOR UPDATE`, fieldID).Scan(&locked)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, busyOr(ctx, err)
    }

    // Sweep PENDING rows that outlived the confirmation grace period.
    cutoff := time.Now().UTC().Add(-r.pendingTTL)
    if _, err = tx.ExecContext(ctx,
        `UPDATE reservations SET status = ? WHERE field_id = ? AND status = ? AND created_at <= ?`,
        model.StatusCancelled, fieldID, model.StatusPending, cutoff,
    ); err != nil {
        return nil, busyOr(ctx, err)
    }

    // Overlap check under the lock: [start, end) against live rows.
    var overlapping int
    err = tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM reservations
         WHERE field_id = ? AND status IN (?, ?) AND start_time < ? AND end_time > ?`,
        fieldID, model.StatusPending, model.StatusConfirmed, end, start,
    ).Scan(&overlapping)
    if err != nil {
        return nil, busyOr(ctx, err)
    }
    if overlapping > 0 {
        return nil, ErrSlotTaken
    }

    result, err := tx.ExecContext(ctx,
        `INSERT INTO reservations (field_id, user_id, start_time, end_time, status, total_price_cents)
         VALUES (?, ?, ?, ?, ?, ?)`,
        fieldID, userID, start, end, model.StatusPending, priceCents,
    )
    if err != nil {
        return nil, busyOr(ctx, err)
    }
    id, err := result.LastInsertId()
    if err != nil {
        return nil, err
    }
    // Query back the full row to populate timestamps and defaults.
    res, err := scanReservation(tx.QueryRowContext(ctx,
        `SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id))
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, busyOr(ctx, err)
    }
    committed = true
    return res, nil
}

// UpdateStatus applies a compare-and-swap transition: the row moves to
// next only when its stored status still equals expected.  When the row
// exists but the status moved on, ErrStatusConflict is returned so a
// stale client view can never confirm an already-cancelled booking.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, expected, next string) (*model.Reservation, error) {
    result, err := r.db.ExecContext(ctx,
        `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`,
        next, id, expected,
    )
    if err != nil {
        return nil, err
    }
    affected, err := result.RowsAffected()
    if err != nil {
        return nil, err
    }
    if affected == 0 {
        // Distinguish a missing row from a stale status assumption.
        var exists int
        err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE id = ?`, id).Scan(&exists)
        if err != nil {
            return nil, err
        }
        if exists == 0 {
            return nil, ErrNotFound
        }
        return nil, ErrStatusConflict
    }
    return r.GetByID(ctx, id)
}

// GetByID returns a single reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    res, err := scanReservation(r.db.QueryRowContext(ctx,
        `SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return res, err
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    return r.list(ctx,
        `SELECT `+reservationCols+` FROM reservations WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListByField returns every reservation on a field, newest first.  The
// service layer enforces that only the field owner may call this.
func (r *ReservationRepo) ListByField(ctx context.Context, fieldID uint64) ([]model.Reservation, error) {
    return r.list(ctx,
        `SELECT `+reservationCols+` FROM reservations WHERE field_id = ? ORDER BY created_at DESC`, fieldID)
}

// ListActiveForDay returns PENDING and CONFIRMED reservations touching
// the UTC day of date on the given field.  Used to annotate the slot
// grid for availability rendering.
func (r *ReservationRepo) ListActiveForDay(ctx context.Context, fieldID uint64, date time.Time) ([]model.Reservation, error) {
    dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
    dayEnd := dayStart.Add(24 * time.Hour)
    return r.list(ctx,
        `SELECT `+reservationCols+` FROM reservations
         WHERE field_id = ? AND status IN (?, ?) AND start_time < ? AND end_time > ?
         ORDER BY start_time ASC`,
        fieldID, model.StatusPending, model.StatusConfirmed, dayEnd, dayStart)
}

// CountActiveByField counts PENDING and CONFIRMED reservations whose
// interval has not yet ended.  Field deactivation is refused while this
// is non-zero.
func (r *ReservationRepo) CountActiveByField(ctx context.Context, fieldID uint64) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM reservations
         WHERE field_id = ? AND status IN (?, ?) AND end_time > UTC_TIMESTAMP()`,
        fieldID, model.StatusPending, model.StatusConfirmed,
    ).Scan(&n)
    return n, err
}

// ExpirePending cancels every PENDING reservation across all fields
// whose grace period has elapsed and returns the number of rows swept.
// TryReserve performs the same sweep per field inside its critical
// section; this variant backs the periodic background loop.
func (r *ReservationRepo) ExpirePending(ctx context.Context) (int64, error) {
    cutoff := time.Now().UTC().Add(-r.pendingTTL)
    result, err := r.db.ExecContext(ctx,
        `UPDATE reservations SET status = ? WHERE status = ? AND created_at <= ?`,
        model.StatusCancelled, model.StatusPending, cutoff,
    )
    if err != nil {
        return 0, err
    }
    return result.RowsAffected()
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// busyOr maps a context deadline hit during the critical section to
// ErrBusy; any other error passes through untouched.
func busyOr(ctx context.Context, err error) error {
    if ctx.Err() != nil {
        return ErrBusy
    }
    return err
}
