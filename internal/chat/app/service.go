package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-ride/internal/chat/domain"
	"campus-ride/internal/shared/util"
)

type ChatService struct {
	repo     domain.Repository
	rides    domain.RideLookup
	notifier domain.Notifier
	logger   *util.Logger
	now      func() time.Time
}

func NewChatService(repo domain.Repository, rides domain.RideLookup, notifier domain.Notifier, logger *util.Logger) *ChatService {
	return &ChatService{repo: repo, rides: rides, notifier: notifier, logger: logger, now: time.Now}
}

// SendMessage appends a message. The receiver is the sender's peer in the chat
// id, and the id must match a ride and one of its requests.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, text string) (*domain.Message, error) {
	instance := "ChatService.SendMessage"

	id, err := domain.ParseChatID(chatID)
	if err != nil {
		return nil, err
	}
	receiverID, ok := id.Peer(senderID)
	if !ok {
		s.logger.Warn(instance, fmt.Sprintf("user %s is not in chat %s", senderID, chatID))
		return nil, domain.ErrNotParticipant
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(text) > domain.MaxMessageLength {
		return nil, domain.ErrMessageTooLong
	}

	allowed, err := s.rides.ChatAllowed(ctx, id.RideID, id.PassengerID, id.DriverID)
	if err != nil {
		s.logger.Error(instance, fmt.Errorf("failed to check chat %s: %w", chatID, err))
		return nil, err
	}
	if !allowed {
		s.logger.Warn(instance, fmt.Sprintf("chat %s does not match a ride request", chatID))
		return nil, domain.ErrUnknownChat
	}

	msg := &domain.Message{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    text,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		s.logger.Error(instance, fmt.Errorf("failed to store message: %w", err))
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, domain.TableMessages, chatID); err != nil {
			s.logger.Warn(instance, fmt.Sprintf("failed to publish message change [chat_id=%s]: %v", chatID, err))
		}
	}
	return msg, nil
}

// ListMessages returns the chat history oldest first, for participants only.
func (s *ChatService) ListMessages(ctx context.Context, chatID, viewerID string) ([]domain.Message, error) {
	id, err := domain.ParseChatID(chatID)
	if err != nil {
		return nil, err
	}
	if !id.Participant(viewerID) {
		return nil, domain.ErrNotParticipant
	}
	return s.repo.ListMessages(ctx, chatID)
}

// ListConversations returns every chat the user is in, most recent first.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	latest, err := s.repo.LatestPerChat(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Conversation, 0, len(latest))
	for _, m := range latest {
		id, err := domain.ParseChatID(m.ChatID)
		if err != nil {
			s.logger.Warn("ChatService.ListConversations", fmt.Sprintf("skipping malformed chat id %q", m.ChatID))
			continue
		}
		peer, ok := id.Peer(userID)
		if !ok {
			continue
		}
		out = append(out, domain.Conversation{
			ChatID:      m.ChatID,
			RideID:      id.RideID,
			PeerID:      peer,
			LastMessage: m,
		})
	}
	return out, nil
}
