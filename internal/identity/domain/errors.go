package domain

import (
	"fmt"

	"campus-ride/internal/shared/apperrors"
)

var (
	ErrNotFound           = fmt.Errorf("%w: profile not found", apperrors.ErrNotFound)
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
)
