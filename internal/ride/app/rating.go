package app

import (
	"context"
	"fmt"
	"math"

	"campus-ride/internal/ride/domain"
	"campus-ride/internal/shared/metrics"
)

const (
	minScore = 1
	maxScore = 5
)

// SubmitRating stores one rating from a booking party about the other party
// and recomputes the ratee's average under a lock on their profile row.
func (s *RideService) SubmitRating(ctx context.Context, raterID, bookingID string, req domain.RatingRequest) (*domain.RatingResult, error) {
	instance := "RideService.SubmitRating"

	if req.Score < minScore || req.Score > maxScore {
		return nil, domain.ErrInvalidScore
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	var rating float64
	err := s.repo.InTx(ctx, func(tx domain.Repository) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if !isCounterparty(b, raterID, req.RateeID) {
			return domain.ErrForbidden
		}

		if err := tx.LockProfile(ctx, req.RateeID); err != nil {
			return err
		}

		if err := tx.CreateRating(ctx, &domain.Rating{
			ID:        s.newID(),
			BookingID: b.ID,
			RaterID:   raterID,
			RateeID:   req.RateeID,
			Score:     req.Score,
			CreatedAt: s.now().UTC(),
		}); err != nil {
			return err
		}

		avg, err := tx.AverageScore(ctx, req.RateeID)
		if err != nil {
			return err
		}
		rating = RoundRating(avg)
		return tx.SetProfileRating(ctx, req.RateeID, rating)
	})
	if err != nil {
		s.logger.Warn(instance, fmt.Sprintf("rating failed [booking_id=%s, rater_id=%s]: %v", bookingID, raterID, err))
		return nil, err
	}

	metrics.RatingsTotal.Inc()
	s.logger.OK(instance, fmt.Sprintf("rating stored [ratee_id=%s, score=%d, rating=%.1f]", req.RateeID, req.Score, rating))
	s.notify(ctx, instance, domain.TableRatings, bookingID)
	s.notify(ctx, instance, domain.TableProfiles, req.RateeID)

	return &domain.RatingResult{
		BookingID: bookingID,
		RateeID:   req.RateeID,
		Score:     req.Score,
		Rating:    rating,
	}, nil
}

// RoundRating rounds to one decimal, halves away from zero.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func isCounterparty(b *domain.Booking, raterID, rateeID string) bool {
	switch raterID {
	case b.PassengerID:
		return rateeID == b.DriverID
	case b.DriverID:
		return rateeID == b.PassengerID
	}
	return false
}
