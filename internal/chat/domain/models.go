package domain

import (
	"context"
	"time"
)

const TableMessages = "messages"

// MaxMessageLength bounds a single chat message in bytes.
const MaxMessageLength = 2000

type Message struct {
	ID         string    `db:"id" json:"id"`
	ChatID     string    `db:"chat_id" json:"chat_id"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	Message    string    `db:"message" json:"message"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

// Conversation is one chat as seen by a participant, with its latest message.
type Conversation struct {
	ChatID      string  `json:"chat_id"`
	RideID      string  `json:"ride_id"`
	PeerID      string  `json:"peer_id"`
	LastMessage Message `json:"last_message"`
}

type Repository interface {
	CreateMessage(ctx context.Context, m *Message) error
	// ListMessages returns a chat's messages, oldest first.
	ListMessages(ctx context.Context, chatID string) ([]Message, error)
	// LatestPerChat returns the newest message of every chat the user is in.
	LatestPerChat(ctx context.Context, userID string) ([]Message, error)
}

type Notifier interface {
	Notify(ctx context.Context, table, key string) error
}

// RideLookup confirms that a chat id names a ride's real driver and a
// passenger who requested a seat on it.
type RideLookup interface {
	ChatAllowed(ctx context.Context, rideID, passengerID, driverID string) (bool, error)
}
