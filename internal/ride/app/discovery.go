package app

import (
	"context"

	"campus-ride/internal/ride/domain"
)

// GetActiveRides lists ACTIVE rides a viewer of the given gender may see and
// that have not ended yet.
func (s *RideService) GetActiveRides(ctx context.Context, viewerGender string) ([]domain.Ride, error) {
	genders := []string{domain.GenderAny}
	if viewerGender != "" && viewerGender != domain.GenderAny {
		genders = append(genders, viewerGender)
	}

	all, err := s.repo.ListRides(ctx, domain.RideFilter{Status: domain.RideActive, AllowedGenders: genders})
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.Ride, 0, len(all))
	for _, r := range all {
		if !domain.Visible(r.AllowedGender, viewerGender) {
			continue
		}
		if !r.IsUpcoming(now, s.opts.Location) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ActiveRidesFor resolves the viewer's gender from their profile.
func (s *RideService) ActiveRidesFor(ctx context.Context, viewerID string) ([]domain.Ride, error) {
	viewer, err := s.profile(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.GetActiveRides(ctx, viewer.Gender)
}

func (s *RideService) GetActiveTrainPosts(ctx context.Context) ([]domain.TrainPost, error) {
	return s.repo.ListTrainPosts(ctx, domain.TrainPostFilter{Status: domain.RideActive})
}

func (s *RideService) GetMyRides(ctx context.Context, driverID string) ([]domain.Ride, error) {
	return s.repo.ListRides(ctx, domain.RideFilter{DriverID: driverID})
}

func (s *RideService) GetMyTrainPosts(ctx context.Context, userID string) ([]domain.TrainPost, error) {
	return s.repo.ListTrainPosts(ctx, domain.TrainPostFilter{UserID: userID})
}
