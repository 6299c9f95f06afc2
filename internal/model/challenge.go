package model

import "time"

// Challenge status values.
const (
    ChallengePending  = "PENDING"
    ChallengeAccepted = "ACCEPTED"
    ChallengeDeclined = "DECLINED"
    ChallengeExpired  = "EXPIRED"
)

// Challenge is a match request from one team to another.  At most one
// PENDING challenge may exist per ordered (initiating, invited) pair;
// a new challenge while one is pending is rejected.  Accepting a
// challenge creates the match chat room.
type Challenge struct {
    ID               uint64    `json:"id"`
    InitiatingTeamID uint64    `json:"initiating_team_id"`
    InvitedTeamID    uint64    `json:"invited_team_id"`
    Status           string    `json:"status"`
    CreatedAt        time.Time `json:"created_at"`
    UpdatedAt        time.Time `json:"updated_at"`
}
