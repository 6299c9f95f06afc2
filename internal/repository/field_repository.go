package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/zonehub/zonehub/internal/model"
)

// FieldRepo provides CRUD operations for fields.  Fields are created by
// owners and soft-deactivated rather than deleted; rows referenced by
// reservations are never removed.
type FieldRepo struct {
    db *sql.DB
}

// NewFieldRepo returns a new FieldRepo bound to the given database.
func NewFieldRepo(db *sql.DB) *FieldRepo { return &FieldRepo{db: db} }

const fieldCols = `id, owner_id, name, description, address, area, price_per_hour_cents, open_hour, close_hour, is_active, created_at, updated_at`

func scanField(row interface{ Scan(...any) error }) (*model.Field, error) {
    var f model.Field
    var desc sql.NullString
    err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &desc, &f.Address, &f.Area,
        &f.PriceCents, &f.OpenHour, &f.CloseHour, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if desc.Valid {
        d := desc.String
        f.Description = &d
    }
    return &f, nil
}

// Create inserts a new field and returns the stored row with generated
// ID and timestamps populated.
func (r *FieldRepo) Create(ctx context.Context, f *model.Field) (*model.Field, error) {
    result, err := r.db.ExecContext(ctx,
        `INSERT INTO fields (owner_id, name, description, address, area, price_per_hour_cents, open_hour, close_hour, is_active)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, TRUE)`,
        f.OwnerID, f.Name, f.Description, f.Address, f.Area, f.PriceCents, f.OpenHour, f.CloseHour,
    )
    if err != nil {
        return nil, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return nil, err
    }
    return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single field or ErrNotFound.
func (r *FieldRepo) GetByID(ctx context.Context, id uint64) (*model.Field, error) {
    f, err := scanField(r.db.QueryRowContext(ctx,
        `SELECT `+fieldCols+` FROM fields WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return f, err
}

// Update rewrites the owner-editable columns of a field after verifying
// ownership.  It returns ErrForbidden when the caller does not own the
// field and ErrNotFound when the field does not exist.
func (r *FieldRepo) Update(ctx context.Context, id, ownerID uint64, f *model.Field) (*model.Field, error) {
    current, err := r.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if current.OwnerID != ownerID {
        return nil, ErrForbidden
    }
    _, err = r.db.ExecContext(ctx,
        `UPDATE fields SET name = ?, description = ?, address = ?, area = ?,
                price_per_hour_cents = ?, open_hour = ?, close_hour = ? WHERE id = ?`,
        f.Name, f.Description, f.Address, f.Area, f.PriceCents, f.OpenHour, f.CloseHour, id,
    )
    if err != nil {
        return nil, err
    }
    return r.GetByID(ctx, id)
}

// Deactivate flips is_active off after verifying ownership.  Callers
// must have checked for active reservations first (see
// ReservationRepo.CountActiveByField).
func (r *FieldRepo) Deactivate(ctx context.Context, id, ownerID uint64) error {
    current, err := r.GetByID(ctx, id)
    if err != nil {
        return err
    }
    if current.OwnerID != ownerID {
        return ErrForbidden
    }
    _, err = r.db.ExecContext(ctx, `UPDATE fields SET is_active = FALSE WHERE id = ?`, id)
    return err
}

// SearchFilter narrows the public browse listing.  Zero values mean the
// filter is not applied.
type SearchFilter struct {
    Area          string
    NameLike      string
    MinPriceCents uint32
    MaxPriceCents uint32
}

// Search returns active fields matching the filter, ordered by name.
func (r *FieldRepo) Search(ctx context.Context, filter SearchFilter) ([]model.Field, error) {
    query := `SELECT ` + fieldCols + ` FROM fields WHERE is_active = TRUE`
    args := make([]any, 0, 4)
    if filter.Area != "" {
        query += ` AND area LIKE ?`
        args = append(args, "%"+strings.TrimSpace(filter.Area)+"%")
    }
    if filter.NameLike != "" {
        query += ` AND name LIKE ?`
        args = append(args, "%"+strings.TrimSpace(filter.NameLike)+"%")
    }
    if filter.MinPriceCents > 0 {
        query += ` AND price_per_hour_cents >= ?`
        args = append(args, filter.MinPriceCents)
    }
    if filter.MaxPriceCents > 0 {
        query += ` AND price_per_hour_cents <= ?`
        args = append(args, filter.MaxPriceCents)
    }
    query += ` ORDER BY name ASC`

    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    fields := make([]model.Field, 0)
    for rows.Next() {
        f, err := scanField(rows)
        if err != nil {
            return nil, err
        }
        fields = append(fields, *f)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return fields, nil
}
