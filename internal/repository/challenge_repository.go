package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/zonehub/zonehub/internal/model"
)

// ChallengeRepo provides data access to the challenges table.  The
// one-pending-per-ordered-pair rule is enforced at insert time inside a
// transaction so two racing challenge attempts cannot both land.
type ChallengeRepo struct {
    db *sql.DB
}

// NewChallengeRepo returns a new ChallengeRepo bound to the given
// database.
func NewChallengeRepo(db *sql.DB) *ChallengeRepo { return &ChallengeRepo{db: db} }

const challengeCols = `id, initiating_team_id, invited_team_id, status, created_at, updated_at`

func scanChallenge(row interface{ Scan(...any) error }) (*model.Challenge, error) {
    var ch model.Challenge
    err := row.Scan(&ch.ID, &ch.InitiatingTeamID, &ch.InvitedTeamID, &ch.Status, &ch.CreatedAt, &ch.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &ch, nil
}

// Create inserts a PENDING challenge for the ordered (initiating,
// invited) pair.  When a PENDING challenge already exists for that pair
// it returns ErrConflict.  The existence check and insert run in one
// transaction with the existing row (if any) locked FOR UPDATE.
func (r *ChallengeRepo) Create(ctx context.Context, initiatingTeamID, invitedTeamID uint64) (*model.Challenge, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var pending int
    err = tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM challenges
         WHERE initiating_team_id = ? AND invited_team_id = ? AND status = ? FOR UPDATE`,
        initiatingTeamID, invitedTeamID, model.ChallengePending,
    ).Scan(&pending)
    if err != nil {
        return nil, err
    }
    if pending > 0 {
        return nil, ErrConflict
    }

    result, err := tx.ExecContext(ctx,
        `INSERT INTO challenges (initiating_team_id, invited_team_id, status) VALUES (?, ?, ?)`,
        initiatingTeamID, invitedTeamID, model.ChallengePending,
    )
    if err != nil {
        return nil, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return nil, err
    }
    ch, err := scanChallenge(tx.QueryRowContext(ctx,
        `SELECT `+challengeCols+` FROM challenges WHERE id = ?`, id))
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return ch, nil
}

// GetByID returns a challenge or ErrNotFound.
func (r *ChallengeRepo) GetByID(ctx context.Context, id uint64) (*model.Challenge, error) {
    ch, err := scanChallenge(r.db.QueryRowContext(ctx,
        `SELECT `+challengeCols+` FROM challenges WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return ch, err
}

// UpdateStatus applies a compare-and-swap transition on a challenge.
// Zero affected rows on an existing challenge means the status moved on
// under the caller, reported as ErrStatusConflict.
func (r *ChallengeRepo) UpdateStatus(ctx context.Context, id uint64, expected, next string) (*model.Challenge, error) {
    result, err := r.db.ExecContext(ctx,
        `UPDATE challenges SET status = ? WHERE id = ? AND status = ?`, next, id, expected)
    if err != nil {
        return nil, err
    }
    affected, err := result.RowsAffected()
    if err != nil {
        return nil, err
    }
    if affected == 0 {
        var exists int
        if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges WHERE id = ?`, id).Scan(&exists); err != nil {
            return nil, err
        }
        if exists == 0 {
            return nil, ErrNotFound
        }
        return nil, ErrStatusConflict
    }
    return r.GetByID(ctx, id)
}

// ListForTeams returns all challenges that involve any of the given
// teams, newest first.  Used to show a user the challenges of every
// team they belong to.
func (r *ChallengeRepo) ListForTeams(ctx context.Context, teamIDs []uint64) ([]model.Challenge, error) {
    if len(teamIDs) == 0 {
        return []model.Challenge{}, nil
    }
    placeholders := ""
    args := make([]any, 0, len(teamIDs)*2)
    for i, id := range teamIDs {
        if i > 0 {
            placeholders += ","
        }
        placeholders += "?"
        args = append(args, id)
    }
    for _, id := range teamIDs {
        args = append(args, id)
    }
    query := `SELECT ` + challengeCols + ` FROM challenges
              WHERE initiating_team_id IN (` + placeholders + `) OR invited_team_id IN (` + placeholders + `)
              ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Challenge, 0)
    for rows.Next() {
        ch, err := scanChallenge(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *ch)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
