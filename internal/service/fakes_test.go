package service

// In-memory fakes implementing the store interfaces.  The reservation
// fake reproduces the store contract the SQL implementation provides:
// overlap-check-and-insert under one lock, CAS semantics on status
// updates.  That lets the state machine and race behavior be exercised
// without a database.

import (
    "context"
    "sync"
    "time"

    "github.com/zonehub/zonehub/internal/model"
    "github.com/zonehub/zonehub/internal/repository"
)

type memReservations struct {
    mu   sync.Mutex
    next uint64
    rows map[uint64]*model.Reservation
}

func newMemReservations() *memReservations {
    return &memReservations{rows: make(map[uint64]*model.Reservation)}
}

func (m *memReservations) TryReserve(ctx context.Context, fieldID, userID uint64, start, end time.Time, priceCents uint32) (*model.Reservation, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, r := range m.rows {
        if r.FieldID != fieldID {
            continue
        }
        if r.Status != model.StatusPending && r.Status != model.StatusConfirmed {
            continue
        }
        if r.Overlaps(start, end) {
            return nil, repository.ErrSlotTaken
        }
    }
    m.next++
    row := &model.Reservation{
        ID: m.next, FieldID: fieldID, UserID: userID,
        StartTime: start, EndTime: end,
        Status: model.StatusPending, PriceCents: priceCents,
        CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
    }
    m.rows[row.ID] = row
    cp := *row
    return &cp, nil
}

func (m *memReservations) UpdateStatus(ctx context.Context, id uint64, expected, next string) (*model.Reservation, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    row, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    if row.Status != expected {
        return nil, repository.ErrStatusConflict
    }
    row.Status = next
    row.UpdatedAt = time.Now().UTC()
    cp := *row
    return &cp, nil
}

func (m *memReservations) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    row, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    cp := *row
    return &cp, nil
}

func (m *memReservations) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []model.Reservation{}
    for _, r := range m.rows {
        if r.UserID == userID {
            out = append(out, *r)
        }
    }
    return out, nil
}

func (m *memReservations) ListByField(ctx context.Context, fieldID uint64) ([]model.Reservation, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []model.Reservation{}
    for _, r := range m.rows {
        if r.FieldID == fieldID {
            out = append(out, *r)
        }
    }
    return out, nil
}

func (m *memReservations) ListActiveForDay(ctx context.Context, fieldID uint64, date time.Time) ([]model.Reservation, error) {
    dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
    dayEnd := dayStart.Add(24 * time.Hour)
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []model.Reservation{}
    for _, r := range m.rows {
        if r.FieldID != fieldID {
            continue
        }
        if r.Status != model.StatusPending && r.Status != model.StatusConfirmed {
            continue
        }
        if r.Overlaps(dayStart, dayEnd) {
            out = append(out, *r)
        }
    }
    return out, nil
}

func (m *memReservations) CountActiveByField(ctx context.Context, fieldID uint64) (int, error) {
    rows, _ := m.ListByField(ctx, fieldID)
    n := 0
    now := time.Now().UTC()
    for _, r := range rows {
        if (r.Status == model.StatusPending || r.Status == model.StatusConfirmed) && r.EndTime.After(now) {
            n++
        }
    }
    return n, nil
}

func (m *memReservations) ExpirePending(ctx context.Context) (int64, error) { return 0, nil }

type memFields struct {
    rows map[uint64]*model.Field
}

func (m *memFields) GetByID(ctx context.Context, id uint64) (*model.Field, error) {
    f, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    cp := *f
    return &cp, nil
}

type recordedNotification struct {
    UserID   uint64
    Category string
    Title    string
    Body     string
}

type notifierRecorder struct {
    mu   sync.Mutex
    sent []recordedNotification
    fail error // when set, Notify returns it
}

func (n *notifierRecorder) Notify(ctx context.Context, userID uint64, category, title, body string) error {
    if n.fail != nil {
        return n.fail
    }
    n.mu.Lock()
    defer n.mu.Unlock()
    n.sent = append(n.sent, recordedNotification{userID, category, title, body})
    return nil
}

func (n *notifierRecorder) forUser(userID uint64) []recordedNotification {
    n.mu.Lock()
    defer n.mu.Unlock()
    out := []recordedNotification{}
    for _, r := range n.sent {
        if r.UserID == userID {
            out = append(out, r)
        }
    }
    return out
}

type memMessages struct {
    mu       sync.Mutex
    nextRoom uint64
    nextMsg  uint64
    rooms    map[uint64]*model.Room
    logs     map[uint64][]model.Message
}

func newMemMessages() *memMessages {
    return &memMessages{rooms: make(map[uint64]*model.Room), logs: make(map[uint64][]model.Message)}
}

func (m *memMessages) CreateRoom(ctx context.Context, challengeID uint64) (*model.Room, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.nextRoom++
    room := &model.Room{ID: m.nextRoom, ChallengeID: challengeID, Status: "active", CreatedAt: time.Now().UTC()}
    m.rooms[room.ID] = room
    cp := *room
    return &cp, nil
}

func (m *memMessages) GetRoomByChallenge(ctx context.Context, challengeID uint64) (*model.Room, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, room := range m.rooms {
        if room.ChallengeID == challengeID {
            cp := *room
            return &cp, nil
        }
    }
    return nil, repository.ErrNotFound
}

func (m *memMessages) GetRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    room, ok := m.rooms[roomID]
    if !ok {
        return nil, repository.ErrNotFound
    }
    cp := *room
    return &cp, nil
}

func (m *memMessages) Insert(ctx context.Context, roomID uint64, senderID *uint64, kind, body string) (*model.Message, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.nextMsg++
    msg := model.Message{ID: m.nextMsg, RoomID: roomID, SenderID: senderID, Kind: kind, Body: body, CreatedAt: time.Now().UTC()}
    m.logs[roomID] = append(m.logs[roomID], msg)
    cp := msg
    return &cp, nil
}

func (m *memMessages) History(ctx context.Context, roomID uint64, limit int) ([]model.Message, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    msgs := m.logs[roomID]
    if limit > 0 && len(msgs) > limit {
        msgs = msgs[len(msgs)-limit:]
    }
    out := make([]model.Message, len(msgs))
    copy(out, msgs)
    return out, nil
}

type memChallenges struct {
    mu   sync.Mutex
    next uint64
    rows map[uint64]*model.Challenge
}

func newMemChallenges() *memChallenges {
    return &memChallenges{rows: make(map[uint64]*model.Challenge)}
}

func (m *memChallenges) Create(ctx context.Context, initiatingTeamID, invitedTeamID uint64) (*model.Challenge, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, ch := range m.rows {
        if ch.InitiatingTeamID == initiatingTeamID && ch.InvitedTeamID == invitedTeamID && ch.Status == model.ChallengePending {
            return nil, repository.ErrConflict
        }
    }
    m.next++
    ch := &model.Challenge{
        ID: m.next, InitiatingTeamID: initiatingTeamID, InvitedTeamID: invitedTeamID,
        Status: model.ChallengePending, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
    }
    m.rows[ch.ID] = ch
    cp := *ch
    return &cp, nil
}

func (m *memChallenges) GetByID(ctx context.Context, id uint64) (*model.Challenge, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    ch, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    cp := *ch
    return &cp, nil
}

func (m *memChallenges) UpdateStatus(ctx context.Context, id uint64, expected, next string) (*model.Challenge, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    ch, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    if ch.Status != expected {
        return nil, repository.ErrStatusConflict
    }
    ch.Status = next
    ch.UpdatedAt = time.Now().UTC()
    cp := *ch
    return &cp, nil
}

func (m *memChallenges) ListForTeams(ctx context.Context, teamIDs []uint64) ([]model.Challenge, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    want := make(map[uint64]bool, len(teamIDs))
    for _, id := range teamIDs {
        want[id] = true
    }
    out := []model.Challenge{}
    for _, ch := range m.rows {
        if want[ch.InitiatingTeamID] || want[ch.InvitedTeamID] {
            out = append(out, *ch)
        }
    }
    return out, nil
}

type memTeams struct {
    teams   map[uint64]*model.Team
    members map[uint64][]uint64 // team -> users
}

func (m *memTeams) GetByID(ctx context.Context, id uint64) (*model.Team, error) {
    t, ok := m.teams[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    cp := *t
    return &cp, nil
}

func (m *memTeams) IsMember(ctx context.Context, teamID, userID uint64) (bool, error) {
    for _, u := range m.members[teamID] {
        if u == userID {
            return true, nil
        }
    }
    return false, nil
}

func (m *memTeams) TeamIDsOf(ctx context.Context, userID uint64) ([]uint64, error) {
    out := []uint64{}
    for teamID, users := range m.members {
        for _, u := range users {
            if u == userID {
                out = append(out, teamID)
                break
            }
        }
    }
    return out, nil
}

type broadcastRecorder struct {
    mu       sync.Mutex
    payloads map[uint64][][]byte
}

func newBroadcastRecorder() *broadcastRecorder {
    return &broadcastRecorder{payloads: make(map[uint64][][]byte)}
}

func (b *broadcastRecorder) SendToRoom(roomID uint64, payload []byte) {
    b.mu.Lock()
    defer b.mu.Unlock()
    cp := make([]byte, len(payload))
    copy(cp, payload)
    b.payloads[roomID] = append(b.payloads[roomID], cp)
}

func (b *broadcastRecorder) forRoom(roomID uint64) [][]byte {
    b.mu.Lock()
    defer b.mu.Unlock()
    return b.payloads[roomID]
}
