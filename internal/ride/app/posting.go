package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"campus-ride/internal/ride/domain"
)

func newUUID() string { return uuid.NewString() }

func (s *RideService) CreateRide(ctx context.Context, driverID string, req domain.CreateRideRequest) (*domain.Ride, error) {
	instance := "RideService.CreateRide"

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn(instance, err.Error())
		return nil, err
	}

	driver, err := s.profile(ctx, driverID)
	if err != nil {
		return nil, err
	}

	seats := 1
	if req.AvailableSeats != nil {
		seats = *req.AvailableSeats
	}
	var cost float64
	if req.Cost != nil {
		cost = *req.Cost
	}

	ride := &domain.Ride{
		ID:             s.newID(),
		DriverID:       driverID,
		DriverName:     displayName(driver.Name, "Driver"),
		From:           strings.TrimSpace(req.From),
		To:             strings.TrimSpace(req.To),
		Date:           strings.TrimSpace(req.Date),
		Time:           strings.TrimSpace(req.Time),
		AvailableSeats: seats,
		Cost:           cost,
		AllowedGender:  allowedGender(req.SameGenderOnly, req.AllowedGender, driver.Gender),
		Status:         domain.RideActive,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.repo.CreateRide(ctx, ride); err != nil {
		s.logger.Error(instance, fmt.Errorf("failed to create ride: %w", err))
		return nil, err
	}

	s.logger.OK(instance, fmt.Sprintf("ride created [ride_id=%s, driver_id=%s, seats=%d]", ride.ID, driverID, seats))
	s.notify(ctx, instance, domain.TableRides, ride.ID)
	return ride, nil
}

func (s *RideService) CreateTrainPost(ctx context.Context, userID string, req domain.CreateTrainPostRequest) (*domain.TrainPost, error) {
	instance := "RideService.CreateTrainPost"

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn(instance, err.Error())
		return nil, err
	}

	user, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	passengers := 1
	if req.PassengersCount != nil {
		passengers = *req.PassengersCount
	}

	post := &domain.TrainPost{
		ID:              s.newID(),
		UserID:          userID,
		UserName:        displayName(user.Name, "User"),
		TrainName:       strings.TrimSpace(req.TrainName),
		FromStation:     strings.TrimSpace(req.FromStation),
		ToStation:       strings.TrimSpace(req.ToStation),
		ArrivalStation:  strings.TrimSpace(req.ArrivalStation),
		ArrivalTime:     strings.TrimSpace(req.ArrivalTime),
		PassengersCount: passengers,
		AllowedGender:   allowedGender(req.SameGenderOnly, req.AllowedGender, user.Gender),
		Status:          domain.RideActive,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.repo.CreateTrainPost(ctx, post); err != nil {
		s.logger.Error(instance, fmt.Errorf("failed to create train post: %w", err))
		return nil, err
	}

	s.logger.OK(instance, fmt.Sprintf("train post created [post_id=%s, user_id=%s]", post.ID, userID))
	s.notify(ctx, instance, domain.TableTrainPosts, post.ID)
	return post, nil
}

// DeleteRide removes the ride row only. Its requests and bookings stay.
func (s *RideService) DeleteRide(ctx context.Context, driverID, rideID string) error {
	instance := "RideService.DeleteRide"

	ride, err := s.repo.GetRide(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.DriverID != driverID {
		s.logger.Warn(instance, fmt.Sprintf("unauthorized delete attempt by %s for ride %s", driverID, rideID))
		return domain.ErrForbidden
	}

	if err := s.repo.DeleteRide(ctx, rideID); err != nil {
		return err
	}

	s.logger.OK(instance, fmt.Sprintf("ride deleted [ride_id=%s]", rideID))
	s.notify(ctx, instance, domain.TableRides, rideID)
	return nil
}

func allowedGender(sameGenderOnly bool, requested, ownerGender string) string {
	if sameGenderOnly && ownerGender != "" {
		return ownerGender
	}
	if requested == "" {
		return domain.GenderAny
	}
	return requested
}

func displayName(name, fallback string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return fallback
}
