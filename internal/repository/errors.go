// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrSlotTaken signals that a booking attempt lost to an
// overlapping reservation and the caller must re-fetch availability.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrSlotTaken is returned by TryReserve when the requested interval
// overlaps an existing PENDING or CONFIRMED reservation on the same
// field. Retrying the same interval is pointless; the caller must
// refresh availability first. Handlers translate this into 409.
var ErrSlotTaken = errors.New("slot unavailable")

// ErrStatusConflict is returned by compare-and-swap status updates when
// the stored status no longer matches the caller's expectation, e.g.
// confirming a booking that was cancelled from another session.
// Handlers translate this into 409; clients must refetch.
var ErrStatusConflict = errors.New("status conflict")

// ErrBusy is returned when a booking attempt could not acquire the
// field-scoped lock within the configured wait bound. Unlike
// ErrSlotTaken this is safe to retry as-is. Handlers translate this
// into 503 with a Retry-After header.
var ErrBusy = errors.New("busy")

// ErrConflict is returned when a delete or update cannot be performed
// because of dependent state, such as deactivating a field that still
// has active reservations or issuing a challenge while one is already
// pending. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
