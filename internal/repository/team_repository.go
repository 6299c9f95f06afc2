package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/zonehub/zonehub/internal/model"
)

// TeamRepo provides read access to teams and their membership rows.
// Team management (create, invite, roster edits) lives outside this
// service; the booking core only consults membership to authorize
// challenges and chat room access.
type TeamRepo struct {
    db *sql.DB
}

// NewTeamRepo returns a new TeamRepo bound to the given database.
func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

// GetByID returns a team or ErrNotFound.
func (r *TeamRepo) GetByID(ctx context.Context, id uint64) (*model.Team, error) {
    var t model.Team
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, captain_id, created_at FROM teams WHERE id = ?`, id,
    ).Scan(&t.ID, &t.Name, &t.CaptainID, &t.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &t, nil
}

// IsMember reports whether the user belongs to the team.
func (r *TeamRepo) IsMember(ctx context.Context, teamID, userID uint64) (bool, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID).Scan(&n)
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// TeamIDsOf returns the ids of every team the user belongs to.
func (r *TeamRepo) TeamIDsOf(ctx context.Context, userID uint64) ([]uint64, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT team_id FROM team_members WHERE user_id = ?`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    ids := make([]uint64, 0)
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return ids, nil
}
