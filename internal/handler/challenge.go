package handler

import (
    "net/http" // HTTP status codes

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/zonehub/zonehub/internal/service"
)

// ChallengeHandler exposes the match challenge lifecycle.  Accepting a
// challenge opens its chat room; the response carries both so the
// client can join the room immediately.
type ChallengeHandler struct {
    Challenges *service.ChallengeService
}

// NewChallengeHandler constructs a ChallengeHandler.
func NewChallengeHandler(challenges *service.ChallengeService) *ChallengeHandler {
    if challenges == nil {
        panic("nil service passed to NewChallengeHandler")
    }
    return &ChallengeHandler{Challenges: challenges}
}

// CreateChallenge handles POST /v1/challenges.  The caller must belong
// to the initiating team; a pending challenge for the same pair of
// teams returns 409.
func (h *ChallengeHandler) CreateChallenge(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        InitiatingTeamID uint64 `json:"initiating_team_id"`
        InvitedTeamID    uint64 `json:"invited_team_id"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.InitiatingTeamID == 0 || body.InvitedTeamID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "initiating_team_id and invited_team_id are required"})
    }
    ch, err := h.Challenges.Create(c.Request().Context(), userID, body.InitiatingTeamID, body.InvitedTeamID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, ch)
}

// AcceptChallenge handles PUT /v1/challenges/:id/accept.  Only members
// of the invited team may accept; the response includes the freshly
// created match room.
func (h *ChallengeHandler) AcceptChallenge(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid challenge id"})
    }
    ch, room, err := h.Challenges.Accept(c.Request().Context(), userID, id)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "challenge": ch,
        "room":      room,
    })
}

// DeclineChallenge handles PUT /v1/challenges/:id/decline.
func (h *ChallengeHandler) DeclineChallenge(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid challenge id"})
    }
    ch, err := h.Challenges.Decline(c.Request().Context(), userID, id)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, ch)
}

// ListMyChallenges handles GET /v1/challenges, covering every team the
// caller belongs to.
func (h *ChallengeHandler) ListMyChallenges(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    rows, err := h.Challenges.ListForUser(c.Request().Context(), userID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, rows)
}
