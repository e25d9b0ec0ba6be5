package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type broker struct{ closed bool }

func (b broker) IsClosed() bool { return b.closed }

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		rmq        Closer
		wantStatus int
		wantChecks map[string]string
	}{
		{"all up", pinger{}, broker{}, http.StatusOK, map[string]string{"database": "up", "rabbitmq": "up"}},
		{"db down", pinger{err: errors.New("refused")}, broker{}, http.StatusServiceUnavailable, map[string]string{"database": "down", "rabbitmq": "up"}},
		{"broker down", pinger{}, broker{closed: true}, http.StatusServiceUnavailable, map[string]string{"database": "up", "rabbitmq": "down"}},
		{"broker disabled", pinger{}, nil, http.StatusOK, map[string]string{"database": "up"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Handler("campus-ride", tt.db, tt.rmq)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "campus-ride", body.Service)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}
