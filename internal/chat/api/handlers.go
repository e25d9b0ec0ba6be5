package api

import (
	"context"
	"net/http"
	"time"

	"campus-ride/internal/chat/domain"
	"campus-ride/internal/shared/middleware"
	"campus-ride/internal/shared/util"
	"campus-ride/internal/shared/validation"
)

const requestTimeout = 5 * time.Second

func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	convs, err := h.service.ListConversations(ctx, middleware.UserID(ctx))
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, convs)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathChatID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	msgs, err := h.service.ListMessages(ctx, chatID, middleware.UserID(ctx))
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	util.ResponseInJson(w, http.StatusOK, msgs)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathChatID(w, r)
	if !ok {
		return
	}

	var req domain.SendMessageRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	msg, err := h.service.SendMessage(ctx, chatID, middleware.UserID(ctx), req.Message)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, msg)
}

// pathChatID accepts only chat ids whose parts are UUIDs, since that is what
// the participants' columns hold.
func pathChatID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.PathValue("chatId")
	id, err := domain.ParseChatID(raw)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return "", false
	}
	for _, part := range []string{id.RideID, id.PassengerID, id.DriverID} {
		if validation.ValidateUUID(part) != nil {
			util.ErrResponseInJson(w, domain.ErrInvalidChatID)
			return "", false
		}
	}
	return raw, true
}
