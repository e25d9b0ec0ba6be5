package api

import (
	"context"
	"net/http"
	"time"

	"campus-ride/internal/identity/domain"
	"campus-ride/internal/shared/middleware"
	"campus-ride/internal/shared/util"
	"campus-ride/internal/shared/validation"
)

const requestTimeout = 5 * time.Second

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := h.service.SignUp(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	util.ResponseInJson(w, http.StatusCreated, p)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	token, p, err := h.service.Login(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	util.ResponseInJson(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(h.service.TokenTTL().Seconds()),
		"user":         p,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, middleware.UserID(r.Context()))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validation.ValidateUUID(id); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	h.writeProfile(w, r, id)
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := h.service.GetProfile(ctx, id)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, p)
}
