package service

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/require"

    "github.com/zonehub/zonehub/internal/model"
    "github.com/zonehub/zonehub/internal/repository"
)

// flakyRooms injects a transient CreateRoom failure in front of the
// in-memory room store.
type flakyRooms struct {
    inner *memMessages
    fail  error
}

func (f *flakyRooms) CreateRoom(ctx context.Context, challengeID uint64) (*model.Room, error) {
    if f.fail != nil {
        return nil, f.fail
    }
    return f.inner.CreateRoom(ctx, challengeID)
}

func (f *flakyRooms) GetRoomByChallenge(ctx context.Context, challengeID uint64) (*model.Room, error) {
    return f.inner.GetRoomByChallenge(ctx, challengeID)
}

func newChallengeHarness(t *testing.T) (*ChallengeService, *memMessages, *notifierRecorder, *broadcastRecorder) {
    t.Helper()
    challenges := newMemChallenges()
    msgs := newMemMessages()
    teams := &memTeams{
        teams: map[uint64]*model.Team{
            1: {ID: 1, Name: "Los Tigres", CaptainID: 42},
            2: {ID: 2, Name: "Atletico", CaptainID: 50},
        },
        members: map[uint64][]uint64{1: {42, 43}, 2: {50, 51}},
    }
    notifier := &notifierRecorder{}
    hub := newBroadcastRecorder()
    chat := NewChatService(msgs, challenges, teams, hub)
    svc := NewChallengeService(challenges, teams, msgs, chat, notifier, nil)
    return svc, msgs, notifier, hub
}

func TestChallengeCreate(t *testing.T) {
    svc, _, notifier, _ := newChallengeHarness(t)
    ctx := context.Background()

    ch, err := svc.Create(ctx, 43, 1, 2)
    require.NoError(t, err)
    require.Equal(t, model.ChallengePending, ch.Status)

    // Invited team's captain hears about it.
    require.Len(t, notifier.forUser(50), 1)

    // A second pending challenge for the same pair is rejected.
    _, err = svc.Create(ctx, 42, 1, 2)
    require.ErrorIs(t, err, repository.ErrConflict)
}

func TestChallengeCreateValidation(t *testing.T) {
    svc, _, _, _ := newChallengeHarness(t)
    ctx := context.Background()

    _, err := svc.Create(ctx, 42, 1, 1)
    var verr *ValidationError
    require.ErrorAs(t, err, &verr)

    // Actor not on the initiating team.
    _, err = svc.Create(ctx, 50, 1, 2)
    require.ErrorIs(t, err, repository.ErrForbidden)

    _, err = svc.Create(ctx, 42, 1, 99)
    require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChallengeAccept(t *testing.T) {
    svc, msgs, notifier, hub := newChallengeHarness(t)
    ctx := context.Background()

    ch, err := svc.Create(ctx, 42, 1, 2)
    require.NoError(t, err)

    // Only the invited team may accept.
    _, _, err = svc.Accept(ctx, 42, ch.ID)
    require.ErrorIs(t, err, repository.ErrForbidden)

    updated, room, err := svc.Accept(ctx, 51, ch.ID)
    require.NoError(t, err)
    require.Equal(t, model.ChallengeAccepted, updated.Status)
    require.NotNil(t, room)
    require.Equal(t, ch.ID, room.ChallengeID)

    // The room opens with a system message, already broadcast.
    history, err := msgs.History(ctx, room.ID, 10)
    require.NoError(t, err)
    require.Len(t, history, 1)
    require.Equal(t, model.MessageKindSystem, history[0].Kind)
    require.Len(t, hub.forRoom(room.ID), 1)

    // Initiating captain hears about the acceptance.
    require.Len(t, notifier.forUser(42), 1)

    // Accepting twice hits the already-transitioned state.
    _, _, err = svc.Accept(ctx, 51, ch.ID)
    require.ErrorIs(t, err, repository.ErrStatusConflict)
}

// An accept that dies between the status change and the room creation
// must be resumable: the retry picks up from the room step instead of
// failing the CAS forever.
func TestChallengeAcceptRetriesAfterRoomFailure(t *testing.T) {
    challenges := newMemChallenges()
    msgs := newMemMessages()
    teams := &memTeams{
        teams: map[uint64]*model.Team{
            1: {ID: 1, Name: "Los Tigres", CaptainID: 42},
            2: {ID: 2, Name: "Atletico", CaptainID: 50},
        },
        members: map[uint64][]uint64{1: {42}, 2: {50}},
    }
    notifier := &notifierRecorder{}
    hub := newBroadcastRecorder()
    chat := NewChatService(msgs, challenges, teams, hub)
    rooms := &flakyRooms{inner: msgs, fail: errors.New("room insert failed")}
    svc := NewChallengeService(challenges, teams, rooms, chat, notifier, nil)
    ctx := context.Background()

    ch, err := svc.Create(ctx, 42, 1, 2)
    require.NoError(t, err)

    _, _, err = svc.Accept(ctx, 50, ch.ID)
    require.Error(t, err)

    // The status change committed before the failure.
    stuck, err := challenges.GetByID(ctx, ch.ID)
    require.NoError(t, err)
    require.Equal(t, model.ChallengeAccepted, stuck.Status)

    rooms.fail = nil
    updated, room, err := svc.Accept(ctx, 50, ch.ID)
    require.NoError(t, err)
    require.Equal(t, model.ChallengeAccepted, updated.Status)
    require.NotNil(t, room)
    require.Equal(t, ch.ID, room.ChallengeID)

    history, err := msgs.History(ctx, room.ID, 10)
    require.NoError(t, err)
    require.Len(t, history, 1)
    require.Equal(t, model.MessageKindSystem, history[0].Kind)

    // Once the room exists a further accept is a genuine conflict.
    _, _, err = svc.Accept(ctx, 50, ch.ID)
    require.ErrorIs(t, err, repository.ErrStatusConflict)
}

func TestChallengeDecline(t *testing.T) {
    svc, _, notifier, _ := newChallengeHarness(t)
    ctx := context.Background()

    ch, err := svc.Create(ctx, 42, 1, 2)
    require.NoError(t, err)

    updated, err := svc.Decline(ctx, 50, ch.ID)
    require.NoError(t, err)
    require.Equal(t, model.ChallengeDeclined, updated.Status)
    require.Len(t, notifier.forUser(42), 1)

    _, _, err = svc.Accept(ctx, 50, ch.ID)
    require.ErrorIs(t, err, repository.ErrStatusConflict)
}

func TestChallengeListForUser(t *testing.T) {
    svc, _, _, _ := newChallengeHarness(t)
    ctx := context.Background()

    ch, err := svc.Create(ctx, 42, 1, 2)
    require.NoError(t, err)

    for _, userID := range []uint64{42, 43, 50, 51} {
        list, err := svc.ListForUser(ctx, userID)
        require.NoError(t, err)
        require.Len(t, list, 1)
        require.Equal(t, ch.ID, list[0].ID)
    }

    list, err := svc.ListForUser(ctx, 999)
    require.NoError(t, err)
    require.Empty(t, list)
}
