package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"campus-ride/internal/shared/apperrors"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a single JSON object from the request body. Unknown fields
// and trailing data are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", apperrors.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", apperrors.ErrInvalidInput, err)
	}
	if decoder.More() {
		return fmt.Errorf("%w: invalid JSON body: trailing data", apperrors.ErrInvalidInput)
	}
	return nil
}
