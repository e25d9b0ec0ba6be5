package api

import (
	"context"
	"net/http"

	"campus-ride/internal/chat/domain"
	"campus-ride/internal/shared/realtime"
)

// ChatWS sends the full history right away and again after every new
// message in the chat.
func (h *Handler) ChatWS(w http.ResponseWriter, r *http.Request) {
	instance := "ChatWS.Listen"

	chatID, ok := pathChatID(w, r)
	if !ok {
		return
	}

	sess, err := realtime.Accept(w, r, h.tokens)
	if err != nil {
		h.logger.Warn(instance, err.Error())
		return
	}
	defer sess.Close()

	// Subscribe before the first snapshot so no message falls in between.
	sub := h.hub.Subscribe(realtime.Topic(domain.TableMessages, chatID))
	defer sub.Close()

	snapshot := func() error {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		msgs, err := h.service.ListMessages(ctx, chatID, sess.UserID)
		if err != nil {
			_ = sess.Send(realtime.Message{Type: "error", Message: err.Error()})
			return err
		}
		if msgs == nil {
			msgs = []domain.Message{}
		}
		return sess.Send(realtime.Message{Type: "snapshot", Data: msgs})
	}

	if err := snapshot(); err != nil {
		h.logger.Warn(instance, err.Error())
		return
	}

	err = sess.Run(r.Context(), sub, func(realtime.Change) error {
		return snapshot()
	})
	if err != nil {
		h.logger.Warn(instance, "chat listener closed: "+err.Error())
	}
}
