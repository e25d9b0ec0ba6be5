package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-ride/internal/identity/domain"
	"campus-ride/internal/shared/fieldmap"
)

const uniqueViolation = "23505"

var profiles = fieldmap.New[domain.Profile]("profiles")

type ProfileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepo(db *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) CreateProfile(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.Exec(ctx, profiles.InsertSQL(), profiles.Values(p)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.getOne(ctx, profiles.SelectSQL()+" WHERE id = $1", id)
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.getOne(ctx, profiles.SelectSQL()+" WHERE lower(email) = lower($1)", email)
}

func (r *ProfileRepo) getOne(ctx context.Context, query string, arg string) (*domain.Profile, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[domain.Profile])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}
