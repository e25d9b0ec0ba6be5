package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	identity "campus-ride/internal/identity/domain"
	"campus-ride/internal/ride/domain"
	"campus-ride/internal/shared/util"
	"campus-ride/internal/shared/validation"
)

type state struct {
	rides      map[string]domain.Ride
	trainPosts map[string]domain.TrainPost
	requests   map[string]domain.RideRequest
	bookings   map[string]domain.Booking
	ratings    []domain.Rating
	ratingOf   map[string]float64
}

func (s state) clone() state {
	c := state{
		rides:      make(map[string]domain.Ride, len(s.rides)),
		trainPosts: make(map[string]domain.TrainPost, len(s.trainPosts)),
		requests:   make(map[string]domain.RideRequest, len(s.requests)),
		bookings:   make(map[string]domain.Booking, len(s.bookings)),
		ratings:    append([]domain.Rating(nil), s.ratings...),
		ratingOf:   make(map[string]float64, len(s.ratingOf)),
	}
	for k, v := range s.rides {
		c.rides[k] = v
	}
	for k, v := range s.trainPosts {
		c.trainPosts[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.ratingOf {
		c.ratingOf[k] = v
	}
	return c
}

// memRepo is an in-memory domain.Repository. InTx runs one transaction at a
// time and restores the previous state when fn fails.
type memRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state
}

func newMemRepo() *memRepo {
	return &memRepo{st: state{}.clone()}
}

func (m *memRepo) InTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.st.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.st = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memRepo) CreateRide(_ context.Context, r *domain.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.rides[r.ID] = *r
	return nil
}

func (m *memRepo) GetRide(_ context.Context, id string) (*domain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.st.rides[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *memRepo) ListRides(_ context.Context, f domain.RideFilter) ([]domain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Ride
	for _, r := range m.st.rides {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.DriverID != "" && r.DriverID != f.DriverID {
			continue
		}
		if len(f.AllowedGenders) > 0 && !contains(f.AllowedGenders, r.AllowedGender) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) DeleteRide(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.rides[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.st.rides, id)
	return nil
}

func (m *memRepo) AdjustSeats(_ context.Context, rideID string, delta int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.st.rides[rideID]
	if !ok || r.AvailableSeats+delta < 0 {
		return false, nil
	}
	r.AvailableSeats += delta
	m.st.rides[rideID] = r
	return true, nil
}

func (m *memRepo) CreateTrainPost(_ context.Context, p *domain.TrainPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.trainPosts[p.ID] = *p
	return nil
}

func (m *memRepo) ListTrainPosts(_ context.Context, f domain.TrainPostFilter) ([]domain.TrainPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TrainPost
	for _, p := range m.st.trainPosts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.UserID != "" && p.UserID != f.UserID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) CreateRequest(_ context.Context, r *domain.RideRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.requests[r.ID] = *r
	return nil
}

func (m *memRepo) GetRequest(_ context.Context, id string) (*domain.RideRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.st.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return &r, nil
}

func (m *memRepo) ListRequests(_ context.Context, f domain.RequestFilter) ([]domain.RideRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.RideRequest
	for _, r := range m.st.requests {
		if (f.RideID != "" && r.RideID != f.RideID) ||
			(f.DriverID != "" && r.DriverID != f.DriverID) ||
			(f.PassengerID != "" && r.PassengerID != f.PassengerID) ||
			(f.Status != "" && r.Status != f.Status) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) TransitionRequest(_ context.Context, id, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.st.requests[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	m.st.requests[id] = r
	return true, nil
}

func (m *memRepo) CreateBooking(_ context.Context, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.st.bookings {
		if existing.RequestID == b.RequestID {
			return domain.ErrInvalidStatus
		}
	}
	m.st.bookings[b.ID] = *b
	return nil
}

func (m *memRepo) GetBooking(_ context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.st.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (m *memRepo) ListBookings(_ context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.st.bookings {
		if (f.UserID != "" && b.PassengerID != f.UserID && b.DriverID != f.UserID) ||
			(f.RideID != "" && b.RideID != f.RideID) ||
			(f.Status != "" && b.Status != f.Status) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) TransitionBooking(_ context.Context, id, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.st.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	m.st.bookings[id] = b
	return true, nil
}

func (m *memRepo) CreateRating(_ context.Context, r *domain.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.st.ratings {
		if existing.BookingID == r.BookingID && existing.RaterID == r.RaterID && existing.RateeID == r.RateeID {
			return domain.ErrAlreadyRated
		}
	}
	m.st.ratings = append(m.st.ratings, *r)
	return nil
}

func (m *memRepo) LockProfile(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.ratingOf[id]; !ok {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (m *memRepo) AverageScore(_ context.Context, rateeID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum, n := 0, 0
	for _, r := range m.st.ratings {
		if r.RateeID == rateeID {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (m *memRepo) SetProfileRating(_ context.Context, id string, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.ratingOf[id]; !ok {
		return domain.ErrProfileNotFound
	}
	m.st.ratingOf[id] = rating
	return nil
}

func (m *memRepo) ride(t *testing.T, id string) domain.Ride {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.st.rides[id]
	require.True(t, ok, "ride %s missing", id)
	return r
}

func (m *memRepo) request(id string) domain.RideRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.requests[id]
}

func (m *memRepo) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.bookings)
}

func (m *memRepo) profileRating(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.ratingOf[id]
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// memProfiles serves identity profiles and mirrors them into the repo's
// rating column so LockProfile and SetProfileRating can find them.
type memProfiles struct {
	byID map[string]*identity.Profile
}

func (p *memProfiles) GetProfile(_ context.Context, id string) (*identity.Profile, error) {
	prof, ok := p.byID[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	cp := *prof
	return &cp, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []string
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, table, key string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, table+":"+key)
	return n.err
}

func (n *recordingNotifier) tables() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.changes))
	for _, c := range n.changes {
		table, _, _ := strings.Cut(c, ":")
		out = append(out, table)
	}
	return out
}

type fixture struct {
	svc      *RideService
	repo     *memRepo
	profiles *memProfiles
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	v, err := validation.New("")
	require.NoError(t, err)

	if opts.Location == nil {
		opts.Location = time.UTC
	}

	f := &fixture{
		repo:     newMemRepo(),
		profiles: &memProfiles{byID: make(map[string]*identity.Profile)},
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewRideService(f.repo, f.profiles, f.notifier, v, util.NewNop(), opts)

	tick := f.now
	f.svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	f.svc.newID = uuid.NewString
	return f
}

func (f *fixture) addUser(name, gender string) string {
	id := uuid.NewString()
	f.profiles.byID[id] = &identity.Profile{ID: id, Name: name, Gender: gender, Rating: identity.DefaultRating}
	f.repo.mu.Lock()
	f.repo.st.ratingOf[id] = identity.DefaultRating
	f.repo.mu.Unlock()
	return id
}

func intPtr(v int) *int { return &v }
