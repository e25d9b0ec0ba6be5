package realtime

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campus-ride/internal/shared/jwt"
	"campus-ride/internal/shared/middleware"
)

const (
	authTimeout  = 5 * time.Second
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

var ErrAuthFailed = errors.New("websocket authentication failed")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type AuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type Message struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Session is an authenticated websocket connection. Inbound frames after the
// auth frame are read and discarded so pongs keep the deadline moving.
type Session struct {
	UserID string

	conn    *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}
}

// Accept upgrades the request and waits for {"type":"auth","token":"Bearer <jwt>"}
// as the first frame.
func Accept(w http.ResponseWriter, r *http.Request, tokens *jwt.Manager) (*Session, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	s := &Session{conn: conn, done: make(chan struct{})}

	conn.SetReadDeadline(time.Now().Add(authTimeout))
	var auth AuthMessage
	if err := conn.ReadJSON(&auth); err != nil {
		s.fail("auth timeout")
		return nil, ErrAuthFailed
	}

	tokenStr, ok := middleware.BearerToken(auth.Token)
	if auth.Type != "auth" || !ok {
		s.fail("invalid auth message")
		return nil, ErrAuthFailed
	}
	claims, err := tokens.ParseToken(tokenStr)
	if err != nil {
		s.fail("invalid token")
		return nil, ErrAuthFailed
	}
	s.UserID = claims.Subject

	if err := s.Send(Message{Type: "auth_success", Message: "authenticated"}); err != nil {
		conn.Close()
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go s.readLoop()

	return s, nil
}

func (s *Session) fail(msg string) {
	_ = s.Send(Message{Type: "error", Message: msg})
	s.conn.Close()
}

func (s *Session) readLoop() {
	defer close(s.done)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Session) Send(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

func (s *Session) ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (s *Session) Close() error {
	return s.conn.Close()
}

// Run calls onChange for every signal on sub until the client goes away,
// ctx ends or onChange fails. It pings every 30s.
func (s *Session) Run(ctx context.Context, sub *Subscription, onChange func(Change) error) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			if err := s.ping(); err != nil {
				return err
			}
		case c, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := onChange(c); err != nil {
				return err
			}
		}
	}
}

// ChangeMessage wraps a change signal for the client.
func ChangeMessage(c Change) Message {
	return Message{Type: "change", Data: c}
}
