package schedule

import "errors"

var (
	ErrNotFound   = errors.New("slot not found")
	ErrForbidden  = errors.New("forbidden")
	ErrSlotLocked = errors.New("slot is locked by a booking")
	ErrConflict   = errors.New("slot state changed, retry")
	ErrValidation = errors.New("validation error")
)
