package apperrors

import (
	"errors"
	"net/http"
)

// Base kinds. Domain packages wrap these so handlers can map any domain error
// to a status code without importing every domain.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

func CheckError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	}

	return http.StatusInternalServerError
}

// Message is the client-facing text for err. Internal errors are not echoed.
func Message(err error, statusCode int) string {
	if statusCode >= http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
