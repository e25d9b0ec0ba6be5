package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	identity "campus-ride/internal/identity/domain"
	"campus-ride/internal/ride/domain"
	"campus-ride/internal/shared/apperrors"
	"campus-ride/internal/shared/util"
	"campus-ride/internal/shared/validation"
)

type Options struct {
	// AllowOverbooking lets an accept succeed on a ride with no seats left.
	// The booking is created and the seat count stays at zero.
	AllowOverbooking bool
	// Location is the time zone ride dates are written in.
	Location *time.Location
}

type RideService struct {
	repo      domain.Repository
	profiles  domain.ProfileLookup
	notifier  domain.Notifier
	validator *validation.Validator
	logger    *util.Logger
	opts      Options
	now       func() time.Time
	newID     func() string
}

func NewRideService(
	repo domain.Repository,
	profiles domain.ProfileLookup,
	notifier domain.Notifier,
	v *validation.Validator,
	logger *util.Logger,
	opts Options,
) *RideService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &RideService{
		repo:      repo,
		profiles:  profiles,
		notifier:  notifier,
		validator: v,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		newID:     newUUID,
	}
}

func (s *RideService) profile(ctx context.Context, id string) (*identity.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	return p, nil
}

// notify runs after commit. A lost signal only delays a client re-fetch, so
// failures are logged and swallowed.
func (s *RideService) notify(ctx context.Context, instance, table, key string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, table, key); err != nil {
		s.logger.Warn(instance, fmt.Sprintf("failed to publish %s change [key=%s]: %v", table, key, err))
	}
}
