package api

import (
	"context"
	"net/http"

	"campus-ride/internal/chat/domain"
	"campus-ride/internal/shared/jwt"
	"campus-ride/internal/shared/realtime"
	"campus-ride/internal/shared/util"
)

type Service interface {
	SendMessage(ctx context.Context, chatID, senderID, text string) (*domain.Message, error)
	ListMessages(ctx context.Context, chatID, viewerID string) ([]domain.Message, error)
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
}

type Handler struct {
	service Service
	hub     *realtime.Hub
	tokens  *jwt.Manager
	logger  *util.Logger
}

func NewHandler(s Service, hub *realtime.Hub, tokens *jwt.Manager, logger *util.Logger) *Handler {
	return &Handler{service: s, hub: hub, tokens: tokens, logger: logger}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("GET /chats", auth(http.HandlerFunc(h.ListConversations)))
	mux.Handle("GET /chats/{chatId}/messages", auth(http.HandlerFunc(h.ListMessages)))
	mux.Handle("POST /chats/{chatId}/messages", auth(http.HandlerFunc(h.SendMessage)))
	mux.HandleFunc("GET /ws/chats/{chatId}", h.ChatWS)
}
