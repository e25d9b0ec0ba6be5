package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-ride/internal/ride/domain"
	"campus-ride/internal/shared/fieldmap"
)

const uniqueViolation = "23505"

var (
	rides      = fieldmap.New[domain.Ride](domain.TableRides)
	trainPosts = fieldmap.New[domain.TrainPost](domain.TableTrainPosts)
	requests   = fieldmap.New[domain.RideRequest](domain.TableRequests)
	bookings   = fieldmap.New[domain.Booking](domain.TableBookings)
	ratings    = fieldmap.New[domain.Rating](domain.TableRatings)
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RideRepo struct {
	pool *pgxpool.Pool
	db   querier
}

func NewRideRepo(pool *pgxpool.Pool) *RideRepo {
	return &RideRepo{pool: pool, db: pool}
}

func (r *RideRepo) InTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	if r.pool == nil {
		// Already inside a transaction.
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&RideRepo{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *RideRepo) CreateRide(ctx context.Context, ride *domain.Ride) error {
	if _, err := r.db.Exec(ctx, rides.InsertSQL(), rides.Values(ride)...); err != nil {
		return fmt.Errorf("insert ride failed: %w", err)
	}
	return nil
}

func (r *RideRepo) GetRide(ctx context.Context, id string) (*domain.Ride, error) {
	return getOne[domain.Ride](ctx, r.db, rides.SelectSQL()+" WHERE id = $1", domain.ErrNotFound, id)
}

func (r *RideRepo) ListRides(ctx context.Context, f domain.RideFilter) ([]domain.Ride, error) {
	query, args := rideListQuery(f)
	return list[domain.Ride](ctx, r.db, query, args)
}

func rideListQuery(f domain.RideFilter) (string, []any) {
	var w where
	w.eq(rides.MustColumn("Status"), f.Status)
	w.eq(rides.MustColumn("DriverID"), f.DriverID)
	if len(f.AllowedGenders) > 0 {
		w.add(rides.MustColumn("AllowedGender")+" = ANY(%s)", f.AllowedGenders)
	}
	return rides.SelectSQL() + w.sql() + newestFirst(rides), w.args
}

func (r *RideRepo) DeleteRide(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, "DELETE FROM "+rides.Table()+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete ride failed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RideRepo) AdjustSeats(ctx context.Context, rideID string, delta int) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE `+rides.Table()+`
		SET available_seats = available_seats + $2
		WHERE id = $1 AND available_seats + $2 >= 0
	`, rideID, delta)
	if err != nil {
		return false, fmt.Errorf("adjust seats failed: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *RideRepo) CreateTrainPost(ctx context.Context, post *domain.TrainPost) error {
	if _, err := r.db.Exec(ctx, trainPosts.InsertSQL(), trainPosts.Values(post)...); err != nil {
		return fmt.Errorf("insert train post failed: %w", err)
	}
	return nil
}

func (r *RideRepo) ListTrainPosts(ctx context.Context, f domain.TrainPostFilter) ([]domain.TrainPost, error) {
	query, args := trainPostListQuery(f)
	return list[domain.TrainPost](ctx, r.db, query, args)
}

func trainPostListQuery(f domain.TrainPostFilter) (string, []any) {
	var w where
	w.eq(trainPosts.MustColumn("Status"), f.Status)
	w.eq(trainPosts.MustColumn("UserID"), f.UserID)
	return trainPosts.SelectSQL() + w.sql() + newestFirst(trainPosts), w.args
}

func (r *RideRepo) CreateRequest(ctx context.Context, req *domain.RideRequest) error {
	if _, err := r.db.Exec(ctx, requests.InsertSQL(), requests.Values(req)...); err != nil {
		return fmt.Errorf("insert ride request failed: %w", err)
	}
	return nil
}

func (r *RideRepo) GetRequest(ctx context.Context, id string) (*domain.RideRequest, error) {
	return getOne[domain.RideRequest](ctx, r.db, requests.SelectSQL()+" WHERE id = $1", domain.ErrRequestNotFound, id)
}

func (r *RideRepo) ListRequests(ctx context.Context, f domain.RequestFilter) ([]domain.RideRequest, error) {
	query, args := requestListQuery(f)
	return list[domain.RideRequest](ctx, r.db, query, args)
}

func requestListQuery(f domain.RequestFilter) (string, []any) {
	var w where
	w.eq(requests.MustColumn("RideID"), f.RideID)
	w.eq(requests.MustColumn("DriverID"), f.DriverID)
	w.eq(requests.MustColumn("PassengerID"), f.PassengerID)
	w.eq(requests.MustColumn("Status"), f.Status)
	return requests.SelectSQL() + w.sql() + newestFirst(requests), w.args
}

func (r *RideRepo) TransitionRequest(ctx context.Context, id, from, to string) (bool, error) {
	return transition(ctx, r.db, requests.Table(), id, from, to)
}

func (r *RideRepo) CreateBooking(ctx context.Context, b *domain.Booking) error {
	if _, err := r.db.Exec(ctx, bookings.InsertSQL(), bookings.Values(b)...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInvalidStatus
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (r *RideRepo) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return getOne[domain.Booking](ctx, r.db, bookings.SelectSQL()+" WHERE id = $1", domain.ErrBookingNotFound, id)
}

func (r *RideRepo) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	query, args := bookingListQuery(f)
	return list[domain.Booking](ctx, r.db, query, args)
}

func bookingListQuery(f domain.BookingFilter) (string, []any) {
	var w where
	if f.UserID != "" {
		w.add("("+bookings.MustColumn("PassengerID")+" = %[1]s OR "+bookings.MustColumn("DriverID")+" = %[1]s)", f.UserID)
	}
	w.eq(bookings.MustColumn("RideID"), f.RideID)
	w.eq(bookings.MustColumn("Status"), f.Status)
	return bookings.SelectSQL() + w.sql() + newestFirst(bookings), w.args
}

func (r *RideRepo) TransitionBooking(ctx context.Context, id, from, to string) (bool, error) {
	return transition(ctx, r.db, bookings.Table(), id, from, to)
}

func (r *RideRepo) CreateRating(ctx context.Context, rt *domain.Rating) error {
	if _, err := r.db.Exec(ctx, ratings.InsertSQL(), ratings.Values(rt)...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRated
		}
		return fmt.Errorf("insert rating failed: %w", err)
	}
	return nil
}

func (r *RideRepo) LockProfile(ctx context.Context, id string) error {
	var locked string
	err := r.db.QueryRow(ctx, "SELECT id FROM profiles WHERE id = $1 FOR UPDATE", id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrProfileNotFound
	}
	if err != nil {
		return fmt.Errorf("lock profile failed: %w", err)
	}
	return nil
}

func (r *RideRepo) AverageScore(ctx context.Context, rateeID string) (float64, error) {
	var avg float64
	err := r.db.QueryRow(ctx,
		"SELECT COALESCE(AVG(score), 0)::float8 FROM "+ratings.Table()+" WHERE ratee_id = $1", rateeID,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average score failed: %w", err)
	}
	return avg, nil
}

func (r *RideRepo) SetProfileRating(ctx context.Context, id string, rating float64) error {
	cmd, err := r.db.Exec(ctx, "UPDATE profiles SET rating = $2 WHERE id = $1", id, rating)
	if err != nil {
		return fmt.Errorf("update profile rating failed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func transition(ctx context.Context, db querier, table, id, from, to string) (bool, error) {
	cmd, err := db.Exec(ctx,
		"UPDATE "+table+" SET status = $3 WHERE id = $1 AND status = $2", id, from, to)
	if err != nil {
		return false, fmt.Errorf("update %s status failed: %w", table, err)
	}
	return cmd.RowsAffected() == 1, nil
}

func getOne[T any](ctx context.Context, db querier, query string, notFound error, args ...any) (*T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	v, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return v, nil
}

func list[T any](ctx context.Context, db querier, query string, args []any) ([]T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return out, nil
}

func newestFirst[T any](m *fieldmap.Mapper[T]) string {
	return " ORDER BY " + m.MustColumn("CreatedAt") + " DESC"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) eq(column string, value string) {
	if value == "" {
		return
	}
	w.add(column+" = %s", value)
}

// add appends a condition whose %s verbs all refer to the same new argument.
func (w *where) add(format string, value any) {
	w.args = append(w.args, value)
	w.conds = append(w.conds, fmt.Sprintf(format, fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
