package api

import (
	"context"
	"net/http"
	"time"

	"campus-ride/internal/ride/domain"
	"campus-ride/internal/shared/middleware"
	"campus-ride/internal/shared/util"
	"campus-ride/internal/shared/validation"
)

const requestTimeout = 5 * time.Second

func (h *Handler) CreateRide(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRideRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ride, err := h.service.CreateRide(ctx, middleware.UserID(ctx), req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, ride)
}

func (h *Handler) ListActiveRides(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rides, err := h.service.ActiveRidesFor(ctx, middleware.UserID(ctx))
	writeList(w, rides, err)
}

func (h *Handler) ListMyRides(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rides, err := h.service.GetMyRides(ctx, middleware.UserID(ctx))
	writeList(w, rides, err)
}

func (h *Handler) DeleteRide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.service.DeleteRide(ctx, middleware.UserID(ctx), id); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateTrainPost(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTrainPostRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	post, err := h.service.CreateTrainPost(ctx, middleware.UserID(ctx), req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, post)
}

func (h *Handler) ListActiveTrainPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	posts, err := h.service.GetActiveTrainPosts(ctx)
	writeList(w, posts, err)
}

func (h *Handler) ListMyTrainPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	posts, err := h.service.GetMyTrainPosts(ctx, middleware.UserID(ctx))
	writeList(w, posts, err)
}

func (h *Handler) RequestRide(w http.ResponseWriter, r *http.Request) {
	rideID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	req, err := h.service.RequestRide(ctx, middleware.UserID(ctx), rideID)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, req)
}

func (h *Handler) ListIncomingRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	reqs, err := h.service.ListIncomingRequests(ctx, middleware.UserID(ctx), r.URL.Query().Get("status"))
	writeList(w, reqs, err)
}

func (h *Handler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	reqs, err := h.service.ListMyRequests(ctx, middleware.UserID(ctx))
	writeList(w, reqs, err)
}

func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	booking, err := h.service.AcceptRequest(ctx, middleware.UserID(ctx), id)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, booking)
}

func (h *Handler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	req, err := h.service.DenyRequest(ctx, middleware.UserID(ctx), id)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, req)
}

func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	bookings, err := h.service.ListMyBookings(ctx, middleware.UserID(ctx))
	writeList(w, bookings, err)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	booking, err := h.service.CancelBooking(ctx, middleware.UserID(ctx), id)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, booking)
}

func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req domain.RatingRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.SubmitRating(ctx, middleware.UserID(ctx), id, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, res)
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if err := validation.ValidateUUID(id); err != nil {
		util.ErrResponseInJson(w, err)
		return "", false
	}
	return id, true
}

// writeList renders an empty list as [] rather than null.
func writeList[T any](w http.ResponseWriter, items []T, err error) {
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	util.ResponseInJson(w, http.StatusOK, items)
}
