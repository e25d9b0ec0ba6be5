package api

import (
	"context"
	"net/http"
	"time"

	"campus-ride/internal/identity/domain"
)

type Service interface {
	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.Profile, error)
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Profile, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	TokenTTL() time.Duration
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// RegisterRoutes mounts the auth and profile endpoints. auth guards the
// endpoints that need a signed-in user.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /auth/signup", h.SignUp)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.Handle("GET /me", auth(http.HandlerFunc(h.Me)))
	mux.Handle("GET /profiles/{id}", auth(http.HandlerFunc(h.GetProfile)))
}
