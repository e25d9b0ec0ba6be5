package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-ride/internal/chat/app"
	"campus-ride/internal/chat/domain"
	"campus-ride/internal/shared/jwt"
	"campus-ride/internal/shared/middleware"
	"campus-ride/internal/shared/realtime"
	"campus-ride/internal/shared/util"
)

const (
	rideID      = "11111111-1111-4111-8111-111111111111"
	passengerID = "22222222-2222-4222-8222-222222222222"
	driverID    = "33333333-3333-4333-8333-333333333333"
	outsiderID  = "44444444-4444-4444-8444-444444444444"
)

var chatID = "ride_" + rideID + "_" + passengerID + "_" + driverID

type memRepo struct {
	msgs []domain.Message
}

func (m *memRepo) CreateMessage(_ context.Context, msg *domain.Message) error {
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memRepo) ListMessages(_ context.Context, id string) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.msgs {
		if msg.ChatID == id {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memRepo) LatestPerChat(context.Context, string) ([]domain.Message, error) {
	return nil, nil
}

type openRides struct{}

func (openRides) ChatAllowed(context.Context, string, string, string) (bool, error) {
	return true, nil
}

type env struct {
	mux    *http.ServeMux
	hub    *realtime.Hub
	tokens *jwt.Manager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	hub := realtime.NewHub()
	tokens := jwt.NewManager("test-secret", time.Hour)
	svc := app.NewChatService(&memRepo{}, openRides{}, hub, util.NewNop())

	mux := http.NewServeMux()
	NewHandler(svc, hub, tokens, util.NewNop()).RegisterRoutes(mux, middleware.Auth(tokens))
	return &env{mux: mux, hub: hub, tokens: tokens}
}

func (e *env) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := e.tokens.GenerateToken(userID, userID+"@sies.edu.in")
	require.NoError(t, err)
	return tok
}

func (e *env) do(t *testing.T, userID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func TestSendAndListMessages(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, passengerID, http.MethodPost, "/chats/"+chatID+"/messages", `{"message":"at the gate"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"receiver_id":"`+driverID+`"`)

	rec = e.do(t, driverID, http.MethodGet, "/chats/"+chatID+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "at the gate")

	rec = e.do(t, outsiderID, http.MethodGet, "/chats/"+chatID+"/messages", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatIDMustHoldUUIDs(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, passengerID, http.MethodGet, "/chats/ride_r1_p1_d1/messages", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyHistoryIsArray(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, passengerID, http.MethodGet, "/chats/"+chatID+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestChatWSSendsSnapshots(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chats/" + chatID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	require.NoError(t, conn.WriteJSON(realtime.AuthMessage{Type: "auth", Token: "Bearer " + e.token(t, driverID)}))

	type frame struct {
		Type string           `json:"type"`
		Data []domain.Message `json:"data"`
	}
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "auth_success", f.Type)

	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "snapshot", f.Type)
	assert.Empty(t, f.Data)

	rec := e.do(t, passengerID, http.MethodPost, "/chats/"+chatID+"/messages", `{"message":"hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	f = frame{}
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "snapshot", f.Type)
	require.Len(t, f.Data, 1)
	assert.Equal(t, "hello", f.Data[0].Message)
}
