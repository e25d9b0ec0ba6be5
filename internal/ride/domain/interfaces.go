package domain

import (
	"context"

	identity "campus-ride/internal/identity/domain"
)

// Repository is the tabular store for the ride workflow. Methods called on
// the Repository passed to InTx run in that transaction.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Repository) error) error

	CreateRide(ctx context.Context, ride *Ride) error
	GetRide(ctx context.Context, id string) (*Ride, error)
	ListRides(ctx context.Context, f RideFilter) ([]Ride, error)
	DeleteRide(ctx context.Context, id string) error
	// AdjustSeats adds delta to available_seats unless the result would be
	// negative. It reports false when no row changed.
	AdjustSeats(ctx context.Context, rideID string, delta int) (bool, error)

	CreateTrainPost(ctx context.Context, post *TrainPost) error
	ListTrainPosts(ctx context.Context, f TrainPostFilter) ([]TrainPost, error)

	CreateRequest(ctx context.Context, req *RideRequest) error
	GetRequest(ctx context.Context, id string) (*RideRequest, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]RideRequest, error)
	// TransitionRequest moves a request from one status to another and
	// reports false when it was not in the from status.
	TransitionRequest(ctx context.Context, id, from, to string) (bool, error)

	CreateBooking(ctx context.Context, b *Booking) error
	GetBooking(ctx context.Context, id string) (*Booking, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]Booking, error)
	TransitionBooking(ctx context.Context, id, from, to string) (bool, error)

	// CreateRating returns ErrAlreadyRated for a repeated (booking, rater, ratee).
	CreateRating(ctx context.Context, r *Rating) error
	// LockProfile holds the profile row until the transaction ends.
	LockProfile(ctx context.Context, id string) error
	AverageScore(ctx context.Context, rateeID string) (float64, error)
	SetProfileRating(ctx context.Context, id string, rating float64) error
}

type ProfileLookup interface {
	GetProfile(ctx context.Context, id string) (*identity.Profile, error)
}

// Notifier emits "table changed" signals after a write commits.
type Notifier interface {
	Notify(ctx context.Context, table, key string) error
}
