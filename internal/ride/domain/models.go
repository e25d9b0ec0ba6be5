package domain

import "time"

const (
	RideActive    = "ACTIVE"
	RideCompleted = "COMPLETED"
	RideCancelled = "CANCELLED"

	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
	RequestDenied   = "DENIED"

	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"

	GenderAny = "Any"
)

// Table names double as change-signal topics.
const (
	TableRides      = "rides"
	TableTrainPosts = "train_posts"
	TableRequests   = "ride_requests"
	TableBookings   = "bookings"
	TableRatings    = "ratings"
	TableProfiles   = "profiles"
)

type Ride struct {
	ID             string    `db:"id" json:"id"`
	DriverID       string    `db:"driver_id" json:"driver_id"`
	DriverName     string    `db:"driver_name" json:"driver_name"`
	From           string    `db:"from_place" json:"from"`
	To             string    `db:"to_place" json:"to"`
	Date           string    `db:"date" json:"date"`
	Time           string    `db:"time" json:"time"`
	AvailableSeats int       `db:"available_seats" json:"available_seats"`
	Cost           float64   `db:"cost" json:"cost"`
	AllowedGender  string    `db:"allowed_gender" json:"allowed_gender"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type TrainPost struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	UserName        string    `db:"user_name" json:"user_name"`
	TrainName       string    `db:"train_name" json:"train_name"`
	FromStation     string    `db:"from_station" json:"from_station"`
	ToStation       string    `db:"to_station" json:"to_station"`
	ArrivalStation  string    `db:"arrival_station" json:"arrival_station"`
	ArrivalTime     string    `db:"arrival_time" json:"arrival_time"`
	PassengersCount int       `db:"passengers_count" json:"passengers_count"`
	AllowedGender   string    `db:"allowed_gender" json:"allowed_gender"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type RideRequest struct {
	ID            string    `db:"id" json:"id"`
	RideID        string    `db:"ride_id" json:"ride_id"`
	DriverID      string    `db:"driver_id" json:"driver_id"`
	PassengerID   string    `db:"passenger_id" json:"passenger_id"`
	PassengerName string    `db:"passenger_name" json:"passenger_name"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	// ChatID is derived, never stored.
	ChatID string `db:"-" json:"chat_id,omitempty"`
}

// Booking is created only by accepting a request. RequestID names that request.
type Booking struct {
	ID          string    `db:"id" json:"id"`
	RideID      string    `db:"ride_id" json:"ride_id"`
	RequestID   string    `db:"request_id" json:"request_id"`
	DriverID    string    `db:"driver_id" json:"driver_id"`
	PassengerID string    `db:"passenger_id" json:"passenger_id"`
	Status      string    `db:"status" json:"status"`
	Date        string    `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	ChatID      string    `db:"-" json:"chat_id,omitempty"`
}

type Rating struct {
	ID        string    `db:"id" json:"id"`
	BookingID string    `db:"booking_id" json:"booking_id"`
	RaterID   string    `db:"rater_id" json:"rater_id"`
	RateeID   string    `db:"ratee_id" json:"ratee_id"`
	Score     int       `db:"score" json:"score"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateRideRequest struct {
	From           string   `json:"from" validate:"required,max=200"`
	To             string   `json:"to" validate:"required,max=200"`
	Date           string   `json:"date" validate:"required,max=50"`
	Time           string   `json:"time" validate:"required,max=50"`
	AvailableSeats *int     `json:"available_seats" validate:"omitempty,gte=0,lte=50"`
	Cost           *float64 `json:"cost" validate:"omitempty,gte=0"`
	AllowedGender  string   `json:"allowed_gender" validate:"omitempty,gender"`
	SameGenderOnly bool     `json:"same_gender_only"`
	// Status is accepted and ignored: new rides are always ACTIVE.
	Status string `json:"status"`
}

type CreateTrainPostRequest struct {
	TrainName       string `json:"train_name" validate:"required,max=100"`
	FromStation     string `json:"from_station" validate:"required,max=100"`
	ToStation       string `json:"to_station" validate:"required,max=100"`
	ArrivalStation  string `json:"arrival_station" validate:"max=100"`
	ArrivalTime     string `json:"arrival_time" validate:"max=50"`
	PassengersCount *int   `json:"passengers_count" validate:"omitempty,gte=1,lte=50"`
	AllowedGender   string `json:"allowed_gender" validate:"omitempty,gender"`
	SameGenderOnly  bool   `json:"same_gender_only"`
	Status          string `json:"status"`
}

type RatingRequest struct {
	RateeID string `json:"ratee_id" validate:"required,uuid"`
	Score   int    `json:"score"`
}

type RatingResult struct {
	BookingID string  `json:"booking_id"`
	RateeID   string  `json:"ratee_id"`
	Score     int     `json:"score"`
	Rating    float64 `json:"rating"`
}

type RideFilter struct {
	Status   string
	DriverID string
	// AllowedGenders, when set, keeps rides whose allowed_gender is in the list.
	AllowedGenders []string
}

type TrainPostFilter struct {
	Status string
	UserID string
}

type RequestFilter struct {
	RideID      string
	DriverID    string
	PassengerID string
	Status      string
}

type BookingFilter struct {
	// UserID matches bookings where the user is the passenger or the driver.
	UserID string
	RideID string
	Status string
}
