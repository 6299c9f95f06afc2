package service

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/zonehub/zonehub/internal/model"
    "github.com/zonehub/zonehub/internal/queue"
    "github.com/zonehub/zonehub/internal/repository"
)

// ChallengeWriter extends ChallengeStore with the mutations the
// challenge flow needs.  *repository.ChallengeRepo satisfies it.
type ChallengeWriter interface {
    ChallengeStore
    Create(ctx context.Context, initiatingTeamID, invitedTeamID uint64) (*model.Challenge, error)
    UpdateStatus(ctx context.Context, id uint64, expected, next string) (*model.Challenge, error)
    ListForTeams(ctx context.Context, teamIDs []uint64) ([]model.Challenge, error)
}

// RoomCreator creates and looks up the chat room of an accepted
// challenge.  *repository.MessageRepo satisfies it.
type RoomCreator interface {
    CreateRoom(ctx context.Context, challengeID uint64) (*model.Room, error)
    GetRoomByChallenge(ctx context.Context, challengeID uint64) (*model.Room, error)
}

// SystemPoster posts backend-authored messages into a room.
// *ChatService satisfies it.
type SystemPoster interface {
    PostSystem(ctx context.Context, roomID uint64, body string) (*model.Message, error)
}

// ChallengeService runs the match-challenge lifecycle: a team captain
// (any member, per the original flow) invites another team; the invited
// team accepts or declines.  Accepting brings the match room to life
// and announces it there.
type ChallengeService struct {
    challenges ChallengeWriter
    teams      TeamStore
    rooms      RoomCreator
    chat       SystemPoster
    notifier   Notifier
    publish    PublishFunc
    now        func() time.Time
}

// NewChallengeService wires the service.  publish may be nil.
func NewChallengeService(challenges ChallengeWriter, teams TeamStore, rooms RoomCreator, chat SystemPoster, notifier Notifier, publish PublishFunc) *ChallengeService {
    if challenges == nil || teams == nil || rooms == nil || chat == nil || notifier == nil {
        panic("nil dependency passed to NewChallengeService")
    }
    return &ChallengeService{
        challenges: challenges,
        teams:      teams,
        rooms:      rooms,
        chat:       chat,
        notifier:   notifier,
        publish:    publish,
        now:        func() time.Time { return time.Now().UTC() },
    }
}

// Create issues a challenge from the initiating team to the invited
// team.  The caller must belong to the initiating team; the two teams
// must differ; a PENDING challenge for the same ordered pair rejects
// the new one with ErrConflict.
func (s *ChallengeService) Create(ctx context.Context, actorID, initiatingTeamID, invitedTeamID uint64) (*model.Challenge, error) {
    if initiatingTeamID == invitedTeamID {
        return nil, invalid("a team cannot challenge itself")
    }
    ok, err := s.teams.IsMember(ctx, initiatingTeamID, actorID)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, repository.ErrForbidden
    }
    invited, err := s.teams.GetByID(ctx, invitedTeamID)
    if err != nil {
        return nil, err
    }
    initiating, err := s.teams.GetByID(ctx, initiatingTeamID)
    if err != nil {
        return nil, err
    }

    ch, err := s.challenges.Create(ctx, initiatingTeamID, invitedTeamID)
    if err != nil {
        return nil, err
    }
    err = s.notifier.Notify(ctx, invited.CaptainID, model.NotifyTeam,
        "Challenge received",
        fmt.Sprintf("%s has challenged %s to a match", initiating.Name, invited.Name))
    if err != nil {
        return nil, err
    }
    return ch, nil
}

// Accept moves a PENDING challenge to ACCEPTED on behalf of the invited
// team, creates the match chat room, announces it there and notifies
// the initiating team's captain.
//
// The status change and the room creation are separate writes.  When a
// previous accept flipped the status but died before the room landed,
// the challenge would otherwise be stuck ACCEPTED with no room, so an
// accept of an ACCEPTED challenge without a room resumes from the room
// step instead of failing the CAS.  An ACCEPTED challenge whose room
// exists still reports ErrStatusConflict; the unique key on
// rooms.challenge_id backstops a racing double-resume.
func (s *ChallengeService) Accept(ctx context.Context, actorID, challengeID uint64) (*model.Challenge, *model.Room, error) {
    ch, err := s.authorizeInvited(ctx, actorID, challengeID)
    if err != nil {
        return nil, nil, err
    }
    var updated *model.Challenge
    switch ch.Status {
    case model.ChallengePending:
        updated, err = s.challenges.UpdateStatus(ctx, challengeID, model.ChallengePending, model.ChallengeAccepted)
        if err != nil {
            return nil, nil, err
        }
    case model.ChallengeAccepted:
        if _, err := s.rooms.GetRoomByChallenge(ctx, challengeID); err == nil {
            return nil, nil, repository.ErrStatusConflict
        } else if !errors.Is(err, repository.ErrNotFound) {
            return nil, nil, err
        }
        updated = ch
    default:
        return nil, nil, repository.ErrStatusConflict
    }
    room, err := s.rooms.CreateRoom(ctx, challengeID)
    if err != nil {
        return nil, nil, err
    }
    if _, err := s.chat.PostSystem(ctx, room.ID, "Challenge accepted - coordinate your match here."); err != nil {
        return nil, nil, err
    }

    if s.publish != nil {
        ev := queue.Event{
            Kind:        queue.KindChallengeAccepted,
            ChallengeID: challengeID,
            RoomID:      room.ID,
            OccurredAt:  s.now().Format(time.RFC3339),
        }
        if err := s.publish(ctx, ev); err != nil {
            log.Printf("challenge: publish accepted failed: %v", err)
        }
    }

    initiating, err := s.teams.GetByID(ctx, updated.InitiatingTeamID)
    if err != nil {
        return nil, nil, err
    }
    err = s.notifier.Notify(ctx, initiating.CaptainID, model.NotifyTeam,
        "Challenge accepted",
        "Your challenge was accepted. A match room is open.")
    if err != nil {
        return nil, nil, err
    }
    return updated, room, nil
}

// Decline moves a PENDING challenge to DECLINED on behalf of the
// invited team and notifies the initiating team's captain.
func (s *ChallengeService) Decline(ctx context.Context, actorID, challengeID uint64) (*model.Challenge, error) {
    if _, err := s.authorizeInvited(ctx, actorID, challengeID); err != nil {
        return nil, err
    }
    updated, err := s.challenges.UpdateStatus(ctx, challengeID, model.ChallengePending, model.ChallengeDeclined)
    if err != nil {
        return nil, err
    }
    initiating, err := s.teams.GetByID(ctx, updated.InitiatingTeamID)
    if err != nil {
        return nil, err
    }
    err = s.notifier.Notify(ctx, initiating.CaptainID, model.NotifyTeam,
        "Challenge declined",
        "Your challenge was declined.")
    if err != nil {
        return nil, err
    }
    return updated, nil
}

// ListForUser returns the challenges of every team the user belongs to.
func (s *ChallengeService) ListForUser(ctx context.Context, userID uint64) ([]model.Challenge, error) {
    teamIDs, err := s.teams.TeamIDsOf(ctx, userID)
    if err != nil {
        return nil, err
    }
    return s.challenges.ListForTeams(ctx, teamIDs)
}

func (s *ChallengeService) authorizeInvited(ctx context.Context, actorID, challengeID uint64) (*model.Challenge, error) {
    ch, err := s.challenges.GetByID(ctx, challengeID)
    if err != nil {
        return nil, err
    }
    ok, err := s.teams.IsMember(ctx, ch.InvitedTeamID, actorID)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, repository.ErrForbidden
    }
    return ch, nil
}
