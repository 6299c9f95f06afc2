package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/zonehub/zonehub/internal/model"
)

// MessageRepo provides data access to rooms and their append-only
// message logs.  Messages are inserted once and never mutated; the
// AUTO_INCREMENT id doubles as the room's ordering authority, so
// history reads in id order reproduce the persist order exactly.
type MessageRepo struct {
    db *sql.DB
}

// NewMessageRepo returns a new MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// CreateRoom inserts the chat room for an accepted challenge.  Each
// challenge gets at most one room (unique key on challenge_id).
func (r *MessageRepo) CreateRoom(ctx context.Context, challengeID uint64) (*model.Room, error) {
    result, err := r.db.ExecContext(ctx,
        `INSERT INTO rooms (challenge_id, status) VALUES (?, 'active')`, challengeID)
    if err != nil {
        return nil, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return nil, err
    }
    return r.GetRoom(ctx, uint64(id))
}

// GetRoomByChallenge returns the room of a challenge or ErrNotFound.
// Used by the accept flow to resume a partially applied accept.
func (r *MessageRepo) GetRoomByChallenge(ctx context.Context, challengeID uint64) (*model.Room, error) {
    var room model.Room
    err := r.db.QueryRowContext(ctx,
        `SELECT id, challenge_id, status, created_at FROM rooms WHERE challenge_id = ?`, challengeID,
    ).Scan(&room.ID, &room.ChallengeID, &room.Status, &room.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &room, nil
}

// GetRoom returns a room row or ErrNotFound.
func (r *MessageRepo) GetRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
    var room model.Room
    err := r.db.QueryRowContext(ctx,
        `SELECT id, challenge_id, status, created_at FROM rooms WHERE id = ?`, roomID,
    ).Scan(&room.ID, &room.ChallengeID, &room.Status, &room.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &room, nil
}

// Insert appends a message to a room's log and returns the stored row.
// senderID is nil for system messages.
func (r *MessageRepo) Insert(ctx context.Context, roomID uint64, senderID *uint64, kind, body string) (*model.Message, error) {
    result, err := r.db.ExecContext(ctx,
        `INSERT INTO messages (room_id, sender_id, kind, body) VALUES (?, ?, ?, ?)`,
        roomID, senderID, kind, body,
    )
    if err != nil {
        return nil, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return nil, err
    }
    var msg model.Message
    var sender sql.NullInt64
    err = r.db.QueryRowContext(ctx,
        `SELECT id, room_id, sender_id, kind, body, created_at FROM messages WHERE id = ?`, id,
    ).Scan(&msg.ID, &msg.RoomID, &sender, &msg.Kind, &msg.Body, &msg.CreatedAt)
    if err != nil {
        return nil, err
    }
    if sender.Valid {
        sid := uint64(sender.Int64)
        msg.SenderID = &sid
    }
    return &msg, nil
}

// History returns the most recent limit messages of a room in oldest-
// first order, matching the order in which live members saw them.
func (r *MessageRepo) History(ctx context.Context, roomID uint64, limit int) ([]model.Message, error) {
    if limit <= 0 {
        limit = 50
    }
    // Take the newest rows, then flip to oldest-first for replay.
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, room_id, sender_id, kind, body, created_at FROM messages
         WHERE room_id = ? ORDER BY id DESC LIMIT ?`, roomID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    msgs := make([]model.Message, 0, limit)
    for rows.Next() {
        var msg model.Message
        var sender sql.NullInt64
        if err := rows.Scan(&msg.ID, &msg.RoomID, &sender, &msg.Kind, &msg.Body, &msg.CreatedAt); err != nil {
            return nil, err
        }
        if sender.Valid {
            sid := uint64(sender.Int64)
            msg.SenderID = &sid
        }
        msgs = append(msgs, msg)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
        msgs[i], msgs[j] = msgs[j], msgs[i]
    }
    return msgs, nil
}
