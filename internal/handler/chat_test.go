package handler

import (
    "context"
    "encoding/json"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/zonehub/zonehub/internal/model"
    "github.com/zonehub/zonehub/internal/repository"
    "github.com/zonehub/zonehub/internal/service"
    "github.com/zonehub/zonehub/internal/utils"
    "github.com/zonehub/zonehub/internal/ws"
)

const chatTestSecret = "chat-test-secret"

// chatStore is an in-memory room and message store for transport tests.
// historyHook, when set, runs in the middle of a History read so tests
// can interleave a broadcast with the replay.
type chatStore struct {
    mu          sync.Mutex
    nextMsg     uint64
    rooms       map[uint64]*model.Room
    logs        map[uint64][]model.Message
    historyHook func()
}

func newChatStore() *chatStore {
    return &chatStore{
        rooms: map[uint64]*model.Room{
            1: {ID: 1, ChallengeID: 1, Status: "active", CreatedAt: time.Now().UTC()},
        },
        logs: make(map[uint64][]model.Message),
    }
}

func (s *chatStore) GetRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    room, ok := s.rooms[roomID]
    if !ok {
        return nil, repository.ErrNotFound
    }
    cp := *room
    return &cp, nil
}

func (s *chatStore) Insert(ctx context.Context, roomID uint64, senderID *uint64, kind, body string) (*model.Message, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextMsg++
    msg := model.Message{ID: s.nextMsg, RoomID: roomID, SenderID: senderID, Kind: kind, Body: body, CreatedAt: time.Now().UTC()}
    s.logs[roomID] = append(s.logs[roomID], msg)
    cp := msg
    return &cp, nil
}

func (s *chatStore) History(ctx context.Context, roomID uint64, limit int) ([]model.Message, error) {
    if s.historyHook != nil {
        s.historyHook()
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    msgs := s.logs[roomID]
    out := make([]model.Message, len(msgs))
    copy(out, msgs)
    return out, nil
}

func (s *chatStore) messages(roomID uint64) []model.Message {
    s.mu.Lock()
    defer s.mu.Unlock()
    msgs := s.logs[roomID]
    out := make([]model.Message, len(msgs))
    copy(out, msgs)
    return out
}

// chatChallenges serves the single challenge backing room 1.
type chatChallenges struct{}

func (chatChallenges) GetByID(ctx context.Context, id uint64) (*model.Challenge, error) {
    if id != 1 {
        return nil, repository.ErrNotFound
    }
    return &model.Challenge{ID: 1, InitiatingTeamID: 1, InvitedTeamID: 2, Status: model.ChallengeAccepted}, nil
}

// chatTeams puts user 42 on team 1 and user 50 on team 2; everyone else
// is an outsider.
type chatTeams struct{}

func (chatTeams) GetByID(ctx context.Context, id uint64) (*model.Team, error) {
    return &model.Team{ID: id, Name: "Test Team", CaptainID: 42}, nil
}

func (chatTeams) IsMember(ctx context.Context, teamID, userID uint64) (bool, error) {
    return (teamID == 1 && userID == 42) || (teamID == 2 && userID == 50), nil
}

func (chatTeams) TeamIDsOf(ctx context.Context, userID uint64) ([]uint64, error) {
    switch userID {
    case 42:
        return []uint64{1}, nil
    case 50:
        return []uint64{2}, nil
    }
    return nil, nil
}

func newChatTestHandler(t *testing.T) (*ChatHandler, *chatStore, *ws.Hub) {
    t.Helper()
    store := newChatStore()
    hub := ws.NewHub()
    chat := service.NewChatService(store, chatChallenges{}, chatTeams{}, hub)
    return NewChatHandler(hub, chat, chatTestSecret, 50), store, hub
}

func mintToken(t *testing.T, userID uint64) string {
    t.Helper()
    tok, err := utils.NewAccessToken(chatTestSecret, userID, "PLAYER", 5)
    require.NoError(t, err)
    return tok.Token
}

// drainFrames empties a client's outbound queue into decoded frames.
func drainFrames(t *testing.T, c *ws.Client) []ws.Frame {
    t.Helper()
    out := []ws.Frame{}
    for {
        select {
        case payload := <-c.Send():
            var f ws.Frame
            require.NoError(t, json.Unmarshal(payload, &f))
            out = append(out, f)
        default:
            return out
        }
    }
}

func TestMessageFrameRequiresValidToken(t *testing.T) {
    h, store, hub := newChatTestHandler(t)
    client := ws.NewClient(42, nil)
    hub.Register(client)

    // No token at all.
    h.HandleFrame(client, ws.Frame{Type: "message", RoomID: 1, Body: "hello"})
    frames := drainFrames(t, client)
    require.Len(t, frames, 1)
    require.Equal(t, "error", frames[0].Type)
    require.Empty(t, store.messages(1))

    // Someone else's token on this connection.
    h.HandleFrame(client, ws.Frame{Type: "message", RoomID: 1, Body: "hello", Token: mintToken(t, 50)})
    frames = drainFrames(t, client)
    require.Len(t, frames, 1)
    require.Equal(t, "error", frames[0].Type)
    require.Empty(t, store.messages(1))

    // The session's own token goes through: persisted and broadcast.
    h.HandleFrame(client, ws.Frame{Type: "join", RoomID: 1, Token: mintToken(t, 42)})
    drainFrames(t, client)
    h.HandleFrame(client, ws.Frame{Type: "message", RoomID: 1, Body: "hello", Token: mintToken(t, 42)})
    require.Len(t, store.messages(1), 1)
    frames = drainFrames(t, client)
    require.Len(t, frames, 1)
    require.Equal(t, "message", frames[0].Type)
}

func TestJoinRequiresValidTokenAndMembership(t *testing.T) {
    h, _, hub := newChatTestHandler(t)
    client := ws.NewClient(42, nil)
    hub.Register(client)

    h.HandleFrame(client, ws.Frame{Type: "join", RoomID: 1})
    frames := drainFrames(t, client)
    require.Len(t, frames, 1)
    require.Equal(t, "error", frames[0].Type)
    require.Empty(t, hub.MembersOf(1))

    // An authenticated outsider is still refused by room authorization.
    outsider := ws.NewClient(99, nil)
    hub.Register(outsider)
    h.HandleFrame(outsider, ws.Frame{Type: "join", RoomID: 1, Token: mintToken(t, 99)})
    frames = drainFrames(t, outsider)
    require.Len(t, frames, 1)
    require.Equal(t, "error", frames[0].Type)
    require.Empty(t, hub.MembersOf(1))

    h.HandleFrame(client, ws.Frame{Type: "join", RoomID: 1, Token: mintToken(t, 42)})
    frames = drainFrames(t, client)
    require.Len(t, frames, 1)
    require.Equal(t, "history", frames[0].Type)
    require.Equal(t, []uint64{42}, hub.MembersOf(1))
}

// A message relayed while the history replay is being read must reach
// the joining client live instead of falling into the gap between the
// snapshot and the subscription.
func TestJoinReceivesMessagesRelayedDuringReplay(t *testing.T) {
    h, store, hub := newChatTestHandler(t)
    client := ws.NewClient(42, nil)
    hub.Register(client)

    sender := uint64(50)
    _, err := store.Insert(context.Background(), 1, &sender, model.MessageKindUser, "before join")
    require.NoError(t, err)

    store.historyHook = func() {
        hub.SendToRoom(1, []byte(`{"type":"message","room_id":1,"body":"mid-replay"}`))
    }

    h.HandleFrame(client, ws.Frame{Type: "join", RoomID: 1, Token: mintToken(t, 42)})

    frames := drainFrames(t, client)
    require.Len(t, frames, 2)
    require.Equal(t, "message", frames[0].Type)
    require.Equal(t, "mid-replay", frames[0].Body)
    require.Equal(t, "history", frames[1].Type)
}
