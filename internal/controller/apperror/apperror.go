package apperror

import "errors"

var ErrSessionNotFound = errors.New("checkout session not found")
var ErrSessionAlreadyStored = errors.New("checkout session already stored")
var ErrIdempotencyInProgress = errors.New("a request with this idempotency key is still in progress")
var ErrStorageDisabled = errors.New("session storage is not configured")

var ErrInvalidSessionsQuery = errors.New("invalid sessions query")

// ErrIdempotencyKeyReused is returned when a key comes back with a different request.
var ErrIdempotencyKeyReused = errors.New("idempotency key was already used with a different request")
