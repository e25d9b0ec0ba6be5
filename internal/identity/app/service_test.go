package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-ride/internal/identity/domain"
	"campus-ride/internal/shared/apperrors"
	"campus-ride/internal/shared/jwt"
	"campus-ride/internal/shared/util"
	"campus-ride/internal/shared/validation"
)

type memProfiles struct {
	mu   sync.Mutex
	byID map[string]*domain.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byID: make(map[string]*domain.Profile)}
}

func (m *memProfiles) CreateProfile(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, p.Email) {
			return domain.ErrEmailTaken
		}
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func newService(t *testing.T) (*AuthService, *jwt.Manager) {
	t.Helper()
	v, err := validation.New(`(?i)@(sies(\w+)?\.sies\.edu\.in|sies\.edu\.in)$`)
	require.NoError(t, err)
	tokens := jwt.NewManager("test-secret", time.Hour)
	return NewAuthService(newMemProfiles(), tokens, v, util.NewNop()), tokens
}

func signUpRequest() domain.SignUpRequest {
	return domain.SignUpRequest{
		Name:       "Asha Rao",
		Email:      "Asha@SIESGST.sies.edu.in",
		Password:   "secret123",
		Gender:     domain.GenderFemale,
		Department: "Computer",
		Year:       "TE",
	}
}

func TestSignUpCreatesProfileWithDefaults(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "asha@siesgst.sies.edu.in", p.Email)
	assert.Equal(t, domain.DefaultRating, p.Rating)
	assert.NotEqual(t, "secret123", p.PasswordHash)

	got, err := svc.GetProfile(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)
}

func TestSignUpDefaultsGenderToAny(t *testing.T) {
	svc, _ := newService(t)
	req := signUpRequest()
	req.Gender = ""

	p, err := svc.SignUp(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.GenderAny, p.Gender)
}

func TestSignUpRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.SignUpRequest)
	}{
		{"non institutional email", func(r *domain.SignUpRequest) { r.Email = "asha@gmail.com" }},
		{"short password", func(r *domain.SignUpRequest) { r.Password = "abc" }},
		{"missing name", func(r *domain.SignUpRequest) { r.Name = "  " }},
		{"unknown gender", func(r *domain.SignUpRequest) { r.Gender = "robot" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)
			req := signUpRequest()
			tt.mutate(&req)

			_, err := svc.SignUp(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), signUpRequest())
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLogin(t *testing.T) {
	svc, tokens := newService(t)
	p, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	token, got, err := svc.Login(context.Background(), domain.LoginRequest{Email: "ASHA@siesgst.sies.edu.in", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, claims.Subject)
	assert.Equal(t, p.Email, claims.Email)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), domain.LoginRequest{Email: "asha@siesgst.sies.edu.in", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), domain.LoginRequest{Email: "nobody@sies.edu.in", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
