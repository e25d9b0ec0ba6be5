package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"campus-ride/internal/identity/domain"
	"campus-ride/internal/shared/jwt"
	"campus-ride/internal/shared/util"
	"campus-ride/internal/shared/validation"
)

type AuthService struct {
	repo      domain.ProfileRepository
	tokens    *jwt.Manager
	validator *validation.Validator
	logger    *util.Logger
	now       func() time.Time
}

func NewAuthService(r domain.ProfileRepository, tokens *jwt.Manager, v *validation.Validator, logger *util.Logger) *AuthService {
	return &AuthService{repo: r, tokens: tokens, validator: v, logger: logger, now: time.Now}
}

// SignUp creates the account and its profile in one row.
func (s *AuthService) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.Profile, error) {
	instance := "AuthService.SignUp"

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn(instance, err.Error())
		return nil, err
	}

	s.logger.Info(instance, fmt.Sprintf("attempting to register new user [email=%s]", req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error(instance, fmt.Errorf("failed to hash password: %w", err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	gender := req.Gender
	if gender == "" {
		gender = domain.GenderAny
	}

	p := &domain.Profile{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Gender:       gender,
		Department:   req.Department,
		Year:         req.Year,
		Phone:        req.Phone,
		Rating:       domain.DefaultRating,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			s.logger.Warn(instance, fmt.Sprintf("user with email %s already exists", req.Email))
		} else {
			s.logger.Error(instance, fmt.Errorf("failed to create profile: %w", err))
		}
		return nil, err
	}

	s.logger.OK(instance, fmt.Sprintf("user registered successfully [user_id=%s]", p.ID))
	return p, nil
}

// Login checks the password and issues an access token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Profile, error) {
	instance := "AuthService.Login"

	if err := s.validator.Struct(req); err != nil {
		return "", nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn(instance, fmt.Sprintf("login failed: user not registered [email=%s]", email))
			return "", nil, domain.ErrInvalidCredentials
		}
		s.logger.Error(instance, fmt.Errorf("failed to query user: %w", err))
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Warn(instance, fmt.Sprintf("invalid password for user [email=%s]", email))
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(p.ID, p.Email)
	if err != nil {
		s.logger.Error(instance, fmt.Errorf("failed to generate token: %w", err))
		return "", nil, err
	}

	s.logger.OK(instance, fmt.Sprintf("user login successful [user_id=%s]", p.ID))
	return token, p, nil
}

func (s *AuthService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
