package handler // handler defines http handlers

import (
    "errors"   // errors provides sentinel comparisons for domain errors
    "net/http" // HTTP status codes
    "strconv"  // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/zonehub/zonehub/internal/repository"
    "github.com/zonehub/zonehub/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// domainError translates a service or repository error into the HTTP
// response the client contract promises.  Every handler funnels its
// error paths through here so the status mapping lives in one place:
//
//	validation        -> 400 with the reason
//	not found         -> 404
//	forbidden         -> 403
//	slot taken        -> 409 (re-fetch availability, do not retry as-is)
//	status conflict   -> 409 (state changed underneath, refetch)
//	pending conflict  -> 409
//	busy              -> 503 with Retry-After (retryable as-is)
//	anything else     -> 500
func domainError(c echo.Context, err error) error {
    var verr *service.ValidationError
    switch {
    case errors.As(err, &verr):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Reason})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrSlotTaken):
        return c.JSON(http.StatusConflict, echo.Map{"error": "slot is no longer available"})
    case errors.Is(err, repository.ErrStatusConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "resource state has changed, refetch and retry"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflicting pending request already exists"})
    case errors.Is(err, repository.ErrBusy):
        c.Response().Header().Set("Retry-After", "1")
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "field is busy, retry shortly"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
