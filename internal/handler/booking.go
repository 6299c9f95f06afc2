package handler

import (
    "net/http" // HTTP status codes
    "time"     // parsing interval timestamps

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/zonehub/zonehub/internal/model"
    "github.com/zonehub/zonehub/internal/service"
)

// projectStatuses rewrites each reservation's stored status with its
// read-time projection so listings show COMPLETED for confirmed
// bookings whose end time has passed.
func projectStatuses(rows []model.Reservation) []model.Reservation {
    now := time.Now().UTC()
    for i := range rows {
        rows[i].Status = rows[i].EffectiveStatus(now)
    }
    return rows
}

// BookingHandler exposes the booking lifecycle: create, confirm, cancel
// and the two listing views.  All methods require an authenticated
// user; ownership rules themselves live in the service layer, the
// handler only translates errors into status codes.
type BookingHandler struct {
    Bookings *service.ReservationService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.ReservationService) *BookingHandler {
    if bookings == nil {
        panic("nil service passed to NewBookingHandler")
    }
    return &BookingHandler{Bookings: bookings}
}

// CreateBooking handles POST /v1/bookings.  The body carries the field
// and the requested half-open interval in RFC 3339.  A winning request
// returns 201 with the PENDING reservation; an overlapping interval
// returns 409 and the client must re-fetch availability; a saturated
// field lock returns 503 with Retry-After.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        FieldID uint64 `json:"field_id"`
        Start   string `json:"start_time"`
        End     string `json:"end_time"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.FieldID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "field_id is required"})
    }
    start, err := time.Parse(time.RFC3339, body.Start)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be RFC 3339"})
    }
    end, err := time.Parse(time.RFC3339, body.End)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be RFC 3339"})
    }

    res, err := h.Bookings.CreateBooking(c.Request().Context(), userID, body.FieldID, start, end)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// ConfirmBooking handles POST /v1/bookings/:id/confirm.  Field owners
// approve a PENDING request; anyone else gets 403.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    res, err := h.Bookings.ConfirmBooking(c.Request().Context(), userID, id)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  Either side of
// the booking may cancel while it is still live; completed or already
// cancelled bookings return 409.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    res, err := h.Bookings.CancelBooking(c.Request().Context(), userID, id)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// ListMyBookings handles GET /v1/bookings and returns the requester's
// bookings with their effective status projected at read time.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    rows, err := h.Bookings.ListForUser(c.Request().Context(), userID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, projectStatuses(rows))
}

// ListFieldBookings handles GET /v1/fields/:id/bookings for field
// owners reviewing the schedule of one of their fields.
func (h *BookingHandler) ListFieldBookings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    fieldID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
    }
    rows, err := h.Bookings.ListForField(c.Request().Context(), userID, fieldID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, projectStatuses(rows))
}
