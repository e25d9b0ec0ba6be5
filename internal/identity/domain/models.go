package domain

import (
	"context"
	"time"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
	GenderAny    = "Any"
)

// DefaultRating is what a profile starts with before anyone rates it.
const DefaultRating = 5.0

type Profile struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Gender       string    `db:"gender" json:"gender"`
	Department   string    `db:"department" json:"department"`
	Year         string    `db:"year" json:"year"`
	Phone        string    `db:"phone" json:"phone"`
	Rating       float64   `db:"rating" json:"rating"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type SignUpRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,institutional_email"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Gender     string `json:"gender" validate:"omitempty,gender"`
	Department string `json:"department" validate:"max=100"`
	Year       string `json:"year" validate:"max=20"`
	Phone      string `json:"phone" validate:"max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
}
