package domain

import (
	"fmt"

	"campus-ride/internal/shared/apperrors"
)

var (
	ErrNotFound          = fmt.Errorf("%w: ride not found", apperrors.ErrNotFound)
	ErrRequestNotFound   = fmt.Errorf("%w: ride request not found", apperrors.ErrNotFound)
	ErrBookingNotFound   = fmt.Errorf("%w: booking not found", apperrors.ErrNotFound)
	ErrProfileNotFound   = fmt.Errorf("%w: profile not found", apperrors.ErrNotFound)
	ErrForbidden         = fmt.Errorf("%w: forbidden action", apperrors.ErrForbidden)
	ErrOwnRide           = fmt.Errorf("%w: cannot request your own ride", apperrors.ErrForbidden)
	ErrInvalidStatus     = fmt.Errorf("%w: invalid status for this action", apperrors.ErrConflict)
	ErrRideFull          = fmt.Errorf("%w: ride has no seats left", apperrors.ErrConflict)
	ErrAlreadyRated      = fmt.Errorf("%w: already rated for this booking", apperrors.ErrConflict)
	ErrInvalidScore      = fmt.Errorf("%w: score must be between 1 and 5", apperrors.ErrInvalidInput)
	ErrInvalidStatusName = fmt.Errorf("%w: unknown request status", apperrors.ErrInvalidInput)
)
