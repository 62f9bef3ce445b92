package appointment

import (
	"errors"
	"fmt"

	"campusbook/internal/domain"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSlotUnavailable   = errors.New("slot is not available")
	ErrSlotLocked        = errors.New("slot is locked by a booking")
	ErrValidation        = errors.New("validation error")
)

// transitionError carries current vs requested state so clients can tell a
// stale retry from a genuinely illegal request.
func transitionError(current, requested domain.AppointmentStatus) error {
	return fmt.Errorf("%w: current=%s requested=%s", ErrInvalidTransition, current, requested)
}
