package service

import (
    "context"
    "encoding/json"
    "sync"

    "github.com/zonehub/zonehub/internal/model"
    "github.com/zonehub/zonehub/internal/repository"
)

// MessageStore is the slice of the message repository the relay depends
// on.  *repository.MessageRepo satisfies it.
type MessageStore interface {
    GetRoom(ctx context.Context, roomID uint64) (*model.Room, error)
    Insert(ctx context.Context, roomID uint64, senderID *uint64, kind, body string) (*model.Message, error)
    History(ctx context.Context, roomID uint64, limit int) ([]model.Message, error)
}

// ChallengeStore is the slice of the challenge repository used for room
// authorization.  *repository.ChallengeRepo satisfies it.
type ChallengeStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Challenge, error)
}

// TeamStore answers membership questions.  *repository.TeamRepo
// satisfies it.
type TeamStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Team, error)
    IsMember(ctx context.Context, teamID, userID uint64) (bool, error)
    TeamIDsOf(ctx context.Context, userID uint64) ([]uint64, error)
}

// Broadcaster delivers payloads to the live members of a room.  The ws
// hub satisfies it.
type Broadcaster interface {
    SendToRoom(roomID uint64, payload []byte)
}

// ChatService is the message relay of a match room.  Its single
// invariant is persist-then-broadcast under a per-room lock: a message
// is durably recorded before any live member sees it, and because each
// room has exactly one writer path at a time, the order returned by
// History always equals the delivery order every member observed.
type ChatService struct {
    store      MessageStore
    challenges ChallengeStore
    teams      TeamStore
    hub        Broadcaster

    mu        sync.Mutex
    roomLocks map[uint64]*sync.Mutex
}

// NewChatService wires the relay.
func NewChatService(store MessageStore, challenges ChallengeStore, teams TeamStore, hub Broadcaster) *ChatService {
    if store == nil || challenges == nil || teams == nil || hub == nil {
        panic("nil dependency passed to NewChatService")
    }
    return &ChatService{
        store:      store,
        challenges: challenges,
        teams:      teams,
        hub:        hub,
        roomLocks:  make(map[uint64]*sync.Mutex),
    }
}

// lockFor returns the ordering authority for one room.  Locks are tiny
// and kept for the process lifetime; rooms number in the hundreds, not
// millions.
func (s *ChatService) lockFor(roomID uint64) *sync.Mutex {
    s.mu.Lock()
    defer s.mu.Unlock()
    l, ok := s.roomLocks[roomID]
    if !ok {
        l = &sync.Mutex{}
        s.roomLocks[roomID] = l
    }
    return l
}

// Authorize verifies that the user may participate in the room: the
// room must exist and the user must belong to either team of the
// underlying challenge.  Unauthorized access yields ErrForbidden.
func (s *ChatService) Authorize(ctx context.Context, roomID, userID uint64) error {
    room, err := s.store.GetRoom(ctx, roomID)
    if err != nil {
        return err
    }
    ch, err := s.challenges.GetByID(ctx, room.ChallengeID)
    if err != nil {
        return err
    }
    for _, teamID := range []uint64{ch.InitiatingTeamID, ch.InvitedTeamID} {
        ok, err := s.teams.IsMember(ctx, teamID, userID)
        if err != nil {
            return err
        }
        if ok {
            return nil
        }
    }
    return repository.ErrForbidden
}

// Post relays a user message: authorize, persist, broadcast, in that
// order, all under the room's lock.
func (s *ChatService) Post(ctx context.Context, roomID, senderID uint64, body string) (*model.Message, error) {
    if body == "" {
        return nil, invalid("message body is required")
    }
    if err := s.Authorize(ctx, roomID, senderID); err != nil {
        return nil, err
    }
    return s.append(ctx, roomID, &senderID, model.MessageKindUser, body)
}

// PostSystem relays a backend-authored message (no sender).  Callers
// are trusted; no authorization applies.
func (s *ChatService) PostSystem(ctx context.Context, roomID uint64, body string) (*model.Message, error) {
    return s.append(ctx, roomID, nil, model.MessageKindSystem, body)
}

func (s *ChatService) append(ctx context.Context, roomID uint64, senderID *uint64, kind, body string) (*model.Message, error) {
    l := s.lockFor(roomID)
    l.Lock()
    defer l.Unlock()

    msg, err := s.store.Insert(ctx, roomID, senderID, kind, body)
    if err != nil {
        return nil, err
    }
    payload, err := json.Marshal(map[string]any{
        "type":    "message",
        "room_id": roomID,
        "payload": msg,
    })
    if err != nil {
        return nil, err
    }
    s.hub.SendToRoom(roomID, payload)
    return msg, nil
}

// History returns up to limit messages of the room, oldest first, after
// authorizing the reader.  Replayed to every (re)joining member.
func (s *ChatService) History(ctx context.Context, roomID, userID uint64, limit int) ([]model.Message, error) {
    if err := s.Authorize(ctx, roomID, userID); err != nil {
        return nil, err
    }
    return s.store.History(ctx, roomID, limit)
}
