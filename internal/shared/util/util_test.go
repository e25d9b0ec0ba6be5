package util

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-ride/internal/shared/apperrors"
)

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"name":"Asha"}`, false},
		{"empty", ``, true},
		{"unknown field", `{"name":"Asha","role":"admin"}`, true},
		{"trailing", `{"name":"Asha"}{"name":"B"}`, true},
		{"malformed", `{"name":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			var got body
			err := DecodeJSON(httptest.NewRecorder(), r, &got)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Asha", got.Name)
		})
	}
}

func TestErrResponseInJson(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrResponseInJson(rec, fmt.Errorf("%w: ride has no seats left", apperrors.ErrConflict))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "conflict: ride has no seats left", got["error"])
}

func TestErrResponseHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrResponseInJson(rec, fmt.Errorf("dial tcp 10.0.0.1:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}

func TestNewLoggerRejectsUnknownFormat(t *testing.T) {
	_, err := NewLogger("info", "xml")
	assert.Error(t, err)

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)

	l, err := NewLogger("info", "json")
	require.NoError(t, err)
	l.Info("Test.Logger", "hello")
}
