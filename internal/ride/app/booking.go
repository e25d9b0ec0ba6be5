package app

import (
	"context"
	"errors"
	"fmt"

	chat "campus-ride/internal/chat/domain"
	"campus-ride/internal/ride/domain"
	"campus-ride/internal/shared/metrics"
)

// RequestRide records a PENDING request. Seats are checked on accept.
func (s *RideService) RequestRide(ctx context.Context, passengerID, rideID string) (*domain.RideRequest, error) {
	instance := "RideService.RequestRide"

	ride, err := s.repo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID == passengerID {
		s.logger.Warn(instance, fmt.Sprintf("driver %s tried to request own ride %s", passengerID, rideID))
		return nil, domain.ErrOwnRide
	}

	passenger, err := s.profile(ctx, passengerID)
	if err != nil {
		return nil, err
	}

	req := &domain.RideRequest{
		ID:            s.newID(),
		RideID:        ride.ID,
		DriverID:      ride.DriverID,
		PassengerID:   passengerID,
		PassengerName: displayName(passenger.Name, "Passenger"),
		Status:        domain.RequestPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		s.logger.Error(instance, fmt.Errorf("failed to create ride request: %w", err))
		return nil, err
	}

	s.logger.OK(instance, fmt.Sprintf("ride requested [request_id=%s, ride_id=%s, passenger_id=%s]", req.ID, rideID, passengerID))
	s.notify(ctx, instance, domain.TableRequests, req.ID)
	req.ChatID = chatID(req.RideID, req.PassengerID, req.DriverID)
	return req, nil
}

// AcceptRequest confirms a PENDING request. The status change, the seat
// decrement and the booking insert commit together or not at all.
func (s *RideService) AcceptRequest(ctx context.Context, driverID, requestID string) (*domain.Booking, error) {
	instance := "RideService.AcceptRequest"

	var booking *domain.Booking
	overbooked := false

	err := s.repo.InTx(ctx, func(tx domain.Repository) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.DriverID != driverID {
			return domain.ErrForbidden
		}

		ok, err := tx.TransitionRequest(ctx, req.ID, domain.RequestPending, domain.RequestAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidStatus
		}

		ride, err := tx.GetRide(ctx, req.RideID)
		if err != nil {
			return err
		}

		ok, err = tx.AdjustSeats(ctx, ride.ID, -1)
		if err != nil {
			return err
		}
		if !ok {
			if !s.opts.AllowOverbooking {
				return domain.ErrRideFull
			}
			overbooked = true
		}

		booking = &domain.Booking{
			ID:          s.newID(),
			RideID:      ride.ID,
			RequestID:   req.ID,
			DriverID:    ride.DriverID,
			PassengerID: req.PassengerID,
			Status:      domain.BookingConfirmed,
			Date:        ride.Date,
			Time:        ride.Time,
			CreatedAt:   s.now().UTC(),
		}
		return tx.CreateBooking(ctx, booking)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRideFull) {
			metrics.BookingsTotal.WithLabelValues(metrics.OutcomeFull).Inc()
		}
		s.logger.Warn(instance, fmt.Sprintf("accept failed [request_id=%s]: %v", requestID, err))
		return nil, err
	}

	if overbooked {
		metrics.BookingsTotal.WithLabelValues(metrics.OutcomeOverbooked).Inc()
		s.logger.Warn(instance, fmt.Sprintf("ride %s overbooked by request %s", booking.RideID, requestID))
	} else {
		metrics.BookingsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	}

	s.logger.OK(instance, fmt.Sprintf("request accepted [request_id=%s, booking_id=%s]", requestID, booking.ID))
	s.notify(ctx, instance, domain.TableRequests, requestID)
	s.notify(ctx, instance, domain.TableRides, booking.RideID)
	s.notify(ctx, instance, domain.TableBookings, booking.ID)
	booking.ChatID = chatID(booking.RideID, booking.PassengerID, booking.DriverID)
	return booking, nil
}

func (s *RideService) DenyRequest(ctx context.Context, driverID, requestID string) (*domain.RideRequest, error) {
	instance := "RideService.DenyRequest"

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.DriverID != driverID {
		return nil, domain.ErrForbidden
	}

	ok, err := s.repo.TransitionRequest(ctx, requestID, domain.RequestPending, domain.RequestDenied)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidStatus
	}
	req.Status = domain.RequestDenied

	metrics.BookingsTotal.WithLabelValues(metrics.OutcomeDenied).Inc()
	s.logger.OK(instance, fmt.Sprintf("request denied [request_id=%s]", requestID))
	s.notify(ctx, instance, domain.TableRequests, requestID)
	return req, nil
}

// CancelBooking cancels a CONFIRMED booking and gives the seat back. When the
// ride has been deleted there is no seat to restore and the cancel still
// succeeds.
func (s *RideService) CancelBooking(ctx context.Context, actorID, bookingID string) (*domain.Booking, error) {
	instance := "RideService.CancelBooking"

	var booking *domain.Booking
	restored := false

	err := s.repo.InTx(ctx, func(tx domain.Repository) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if actorID != b.PassengerID && actorID != b.DriverID {
			return domain.ErrForbidden
		}

		ok, err := tx.TransitionBooking(ctx, b.ID, domain.BookingConfirmed, domain.BookingCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidStatus
		}
		b.Status = domain.BookingCancelled

		restored, err = tx.AdjustSeats(ctx, b.RideID, 1)
		if err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		s.logger.Warn(instance, fmt.Sprintf("cancel failed [booking_id=%s]: %v", bookingID, err))
		return nil, err
	}

	if !restored {
		s.logger.Info(instance, fmt.Sprintf("ride %s no longer exists, seat not restored", booking.RideID))
	}
	metrics.BookingsTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
	s.logger.OK(instance, fmt.Sprintf("booking cancelled [booking_id=%s, by=%s]", bookingID, actorID))
	s.notify(ctx, instance, domain.TableBookings, bookingID)
	s.notify(ctx, instance, domain.TableRides, booking.RideID)
	return booking, nil
}

// ListIncomingRequests is the driver's view of requests on their rides.
func (s *RideService) ListIncomingRequests(ctx context.Context, driverID, status string) ([]domain.RideRequest, error) {
	switch status {
	case "", domain.RequestPending, domain.RequestAccepted, domain.RequestDenied:
	default:
		return nil, domain.ErrInvalidStatusName
	}
	reqs, err := s.repo.ListRequests(ctx, domain.RequestFilter{DriverID: driverID, Status: status})
	return withRequestChats(reqs), err
}

func (s *RideService) ListMyRequests(ctx context.Context, passengerID string) ([]domain.RideRequest, error) {
	reqs, err := s.repo.ListRequests(ctx, domain.RequestFilter{PassengerID: passengerID})
	return withRequestChats(reqs), err
}

// ListMyBookings returns bookings where the user is the passenger or the driver.
func (s *RideService) ListMyBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	bookings, err := s.repo.ListBookings(ctx, domain.BookingFilter{UserID: userID})
	for i := range bookings {
		b := &bookings[i]
		b.ChatID = chatID(b.RideID, b.PassengerID, b.DriverID)
	}
	return bookings, err
}

// ChatAllowed reports whether driverID drives rideID and passengerID has
// requested a seat on it.
func (s *RideService) ChatAllowed(ctx context.Context, rideID, passengerID, driverID string) (bool, error) {
	ride, err := s.repo.GetRide(ctx, rideID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if ride.DriverID != driverID {
		return false, nil
	}
	reqs, err := s.repo.ListRequests(ctx, domain.RequestFilter{RideID: rideID, PassengerID: passengerID})
	if err != nil {
		return false, err
	}
	return len(reqs) > 0, nil
}

func withRequestChats(reqs []domain.RideRequest) []domain.RideRequest {
	for i := range reqs {
		r := &reqs[i]
		r.ChatID = chatID(r.RideID, r.PassengerID, r.DriverID)
	}
	return reqs
}

func chatID(rideID, passengerID, driverID string) string {
	id, err := chat.BuildChatID(rideID, passengerID, driverID)
	if err != nil {
		return ""
	}
	return id
}
