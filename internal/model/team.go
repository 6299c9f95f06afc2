package model

import "time"

// Team groups players under a captain.  Team management itself lives
// outside this service; the booking core only needs team identity and
// membership to authorize challenges and chat room access.
type Team struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    CaptainID uint64    `json:"captain_id"`
    CreatedAt time.Time `json:"created_at"`
}

// TeamMember links a user to a team.  Membership rows are the source of
// truth for chat-room authorization.
type TeamMember struct {
    TeamID uint64 `json:"team_id"`
    UserID uint64 `json:"user_id"`
}
