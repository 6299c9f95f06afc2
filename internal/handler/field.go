package handler

import (
    "net/http" // HTTP status codes
    "strconv"  // parsing query parameters
    "time"     // parsing the availability date

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/zonehub/zonehub/internal/model"
    "github.com/zonehub/zonehub/internal/repository"
    "github.com/zonehub/zonehub/internal/service"
)

// FieldHandler exposes field management for owners and the public
// browse surface for everyone.  All owner methods assume that JWT
// authentication and role validation has already been performed by
// middleware; the public methods apply no authentication at all so
// guests can inspect fields and availability before signing in.
type FieldHandler struct {
    Fields       *repository.FieldRepo       // field persistence
    Reservations *repository.ReservationRepo // active-booking counts guarding deactivation
    Bookings     *service.ReservationService // availability projection
}

// NewFieldHandler constructs a FieldHandler.  All dependencies must be
// non-nil.
func NewFieldHandler(fields *repository.FieldRepo, reservations *repository.ReservationRepo, bookings *service.ReservationService) *FieldHandler {
    if fields == nil || reservations == nil || bookings == nil {
        panic("nil dependency passed to NewFieldHandler")
    }
    return &FieldHandler{Fields: fields, Reservations: reservations, Bookings: bookings}
}

// fieldBody is the owner-supplied payload for create and update.
type fieldBody struct {
    Name        string  `json:"name"`
    Description *string `json:"description"`
    Address     string  `json:"address"`
    Area        string  `json:"area"`
    PriceCents  uint32  `json:"price_per_hour_cents"`
    OpenHour    int     `json:"open_hour"`
    CloseHour   int     `json:"close_hour"`
}

func (b *fieldBody) validate() string {
    if b.Name == "" {
        return "name is required"
    }
    if b.Area == "" {
        return "area is required"
    }
    if b.OpenHour < 0 || b.OpenHour > 23 {
        return "open_hour must be between 0 and 23"
    }
    if b.CloseHour < 1 || b.CloseHour > 24 {
        return "close_hour must be between 1 and 24"
    }
    if b.OpenHour >= b.CloseHour {
        return "open_hour must be before close_hour"
    }
    return ""
}

// CreateField handles POST /v1/fields.  Owners register a new bookable
// field; it starts active immediately.
func (h *FieldHandler) CreateField(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body fieldBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if msg := body.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    field, err := h.Fields.Create(c.Request().Context(), &model.Field{
        OwnerID:     ownerID,
        Name:        body.Name,
        Description: body.Description,
        Address:     body.Address,
        Area:        body.Area,
        PriceCents:  body.PriceCents,
        OpenHour:    body.OpenHour,
        CloseHour:   body.CloseHour,
    })
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, field)
}

// UpdateField handles PUT /v1/fields/:id.  Only the owning user may
// edit a field.
func (h *FieldHandler) UpdateField(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    fieldID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
    }
    var body fieldBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if msg := body.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    field, err := h.Fields.Update(c.Request().Context(), fieldID, ownerID, &model.Field{
        Name:        body.Name,
        Description: body.Description,
        Address:     body.Address,
        Area:        body.Area,
        PriceCents:  body.PriceCents,
        OpenHour:    body.OpenHour,
        CloseHour:   body.CloseHour,
    })
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, field)
}

// DeactivateField handles DELETE /v1/fields/:id.  Fields are soft
// deactivated, never deleted; a field with live bookings cannot be
// taken offline until they resolve.
func (h *FieldHandler) DeactivateField(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    fieldID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
    }
    ctx := c.Request().Context()
    active, err := h.Reservations.CountActiveByField(ctx, fieldID)
    if err != nil {
        return domainError(c, err)
    }
    if active > 0 {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":  "field has active bookings",
            "active": active,
        })
    }
    if err := h.Fields.Deactivate(ctx, fieldID, ownerID); err != nil {
        return domainError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// GetPublicFields handles GET /v1/fields.  Supports area, q (name) and
// price range filters; only active fields are listed.
func (h *FieldHandler) GetPublicFields(c echo.Context) error {
    filter := repository.SearchFilter{
        Area:     c.QueryParam("area"),
        NameLike: c.QueryParam("q"),
    }
    if v := c.QueryParam("min_price_cents"); v != "" {
        if n, err := strconv.ParseUint(v, 10, 32); err == nil {
            filter.MinPriceCents = uint32(n)
        }
    }
    if v := c.QueryParam("max_price_cents"); v != "" {
        if n, err := strconv.ParseUint(v, 10, 32); err == nil {
            filter.MaxPriceCents = uint32(n)
        }
    }
    fields, err := h.Fields.Search(c.Request().Context(), filter)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, fields)
}

// GetPublicField handles GET /v1/fields/:id.
func (h *FieldHandler) GetPublicField(c echo.Context) error {
    fieldID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
    }
    field, err := h.Fields.GetByID(c.Request().Context(), fieldID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, field)
}

// GetAvailability handles GET /v1/fields/:id/availability?date=YYYY-MM-DD.
// It returns the field's slot grid for the requested UTC day with each
// slot marked available or taken.  The date defaults to today.
func (h *FieldHandler) GetAvailability(c echo.Context) error {
    fieldID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
    }
    date := time.Now().UTC()
    if v := c.QueryParam("date"); v != "" {
        parsed, err := time.Parse("2006-01-02", v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
        }
        date = parsed
    }
    slots, err := h.Bookings.Availability(c.Request().Context(), fieldID, date)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "field_id": fieldID,
        "date":     date.Format("2006-01-02"),
        "slots":    slots,
    })
}
