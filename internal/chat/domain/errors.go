package domain

import (
	"fmt"

	"campus-ride/internal/shared/apperrors"
)

var (
	ErrInvalidChatID  = fmt.Errorf("%w: chat id must be ride_<rideId>_<passengerId>_<driverId>", apperrors.ErrInvalidInput)
	ErrNotParticipant = fmt.Errorf("%w: not a participant in this chat", apperrors.ErrForbidden)
	ErrUnknownChat    = fmt.Errorf("%w: no ride request links this driver and passenger", apperrors.ErrForbidden)
	ErrEmptyMessage   = fmt.Errorf("%w: message is empty", apperrors.ErrInvalidInput)
	ErrMessageTooLong = fmt.Errorf("%w: message is too long", apperrors.ErrInvalidInput)
)
