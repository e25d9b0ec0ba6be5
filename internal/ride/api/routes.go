package api

import (
	"context"
	"net/http"

	"campus-ride/internal/ride/domain"
	"campus-ride/internal/shared/jwt"
	"campus-ride/internal/shared/realtime"
	"campus-ride/internal/shared/util"
)

type Service interface {
	CreateRide(ctx context.Context, driverID string, req domain.CreateRideRequest) (*domain.Ride, error)
	CreateTrainPost(ctx context.Context, userID string, req domain.CreateTrainPostRequest) (*domain.TrainPost, error)
	DeleteRide(ctx context.Context, driverID, rideID string) error

	ActiveRidesFor(ctx context.Context, viewerID string) ([]domain.Ride, error)
	GetActiveTrainPosts(ctx context.Context) ([]domain.TrainPost, error)
	GetMyRides(ctx context.Context, driverID string) ([]domain.Ride, error)
	GetMyTrainPosts(ctx context.Context, userID string) ([]domain.TrainPost, error)

	RequestRide(ctx context.Context, passengerID, rideID string) (*domain.RideRequest, error)
	AcceptRequest(ctx context.Context, driverID, requestID string) (*domain.Booking, error)
	DenyRequest(ctx context.Context, driverID, requestID string) (*domain.RideRequest, error)
	CancelBooking(ctx context.Context, actorID, bookingID string) (*domain.Booking, error)
	ListIncomingRequests(ctx context.Context, driverID, status string) ([]domain.RideRequest, error)
	ListMyRequests(ctx context.Context, passengerID string) ([]domain.RideRequest, error)
	ListMyBookings(ctx context.Context, userID string) ([]domain.Booking, error)

	SubmitRating(ctx context.Context, raterID, bookingID string, req domain.RatingRequest) (*domain.RatingResult, error)
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
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, auth(fn))
	}

	handle("POST /rides", h.CreateRide)
	handle("GET /rides", h.ListActiveRides)
	handle("GET /rides/mine", h.ListMyRides)
	handle("DELETE /rides/{id}", h.DeleteRide)

	handle("POST /train-posts", h.CreateTrainPost)
	handle("GET /train-posts", h.ListActiveTrainPosts)
	handle("GET /train-posts/mine", h.ListMyTrainPosts)

	handle("POST /rides/{id}/requests", h.RequestRide)
	handle("GET /requests/incoming", h.ListIncomingRequests)
	handle("GET /requests/mine", h.ListMyRequests)
	handle("POST /requests/{id}/accept", h.AcceptRequest)
	handle("POST /requests/{id}/deny", h.DenyRequest)

	handle("GET /bookings/mine", h.ListMyBookings)
	handle("POST /bookings/{id}/cancel", h.CancelBooking)
	handle("POST /bookings/{id}/ratings", h.SubmitRating)

	// Authenticated by the first frame, not by header.
	mux.HandleFunc("GET /ws/changes", h.ChangesWS)
}
