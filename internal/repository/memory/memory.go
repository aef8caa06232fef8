package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drbooking/booking-api/internal/model"
	apperrors "github.com/drbooking/booking-api/pkg/errors"
)

// Store is an in-memory storage backend. It backs the self-contained demo
// mode and the unit tests. A single mutex serializes every mutation, which
// makes CreateBooking the atomic check-and-insert the coordinator relies on.
type Store struct {
	mu          sync.RWMutex
	specialties []*model.Specialty
	doctors     map[uuid.UUID]*model.Doctor
	doctorOrder []uuid.UUID
	bookings    map[uuid.UUID]*model.Booking
	users       map[uuid.UUID]*model.User
	usersByMail map[string]uuid.UUID
	outbox      []*model.OutboxEvent
}

// NewStore returns an empty store. Use NewSeededStore for the demo catalog.
func NewStore() *Store {
	return &Store{
		doctors:     make(map[uuid.UUID]*model.Doctor),
		bookings:    make(map[uuid.UUID]*model.Booking),
		users:       make(map[uuid.UUID]*model.User),
		usersByMail: make(map[string]uuid.UUID),
	}
}

// NewSeededStore returns a store pre-loaded with the demo specialties and
// doctors.
func NewSeededStore() *Store {
	s := NewStore()
	specialties, doctors := seedCatalog()
	s.specialties = specialties
	for _, d := range doctors {
		s.doctors[d.ID] = d
		s.doctorOrder = append(s.doctorOrder, d.ID)
	}
	return s
}

// AddSpecialty seeds one specialty. Intended for tests.
func (s *Store) AddSpecialty(sp *model.Specialty) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specialties = append(s.specialties, sp)
}

// AddDoctor seeds one doctor. Intended for tests.
func (s *Store) AddDoctor(d *model.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctors[d.ID] = d
	s.doctorOrder = append(s.doctorOrder, d.ID)
}

func (s *Store) ListSpecialties(ctx context.Context) ([]*model.Specialty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Specialty, len(s.specialties))
	copy(out, s.specialties)
	return out, nil
}

func (s *Store) ListDoctors(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Doctor
	for _, id := range s.doctorOrder {
		d := s.doctors[id]
		if filters != nil && filters.SpecialtyID != uuid.Nil && d.SpecialtyID != filters.SpecialtyID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

func (s *Store) IsSlotFree(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSlotFreeLocked(doctorID, start, end), nil
}

func (s *Store) isSlotFreeLocked(doctorID uuid.UUID, start, end time.Time) bool {
	for _, b := range s.bookings {
		if b.DoctorID != doctorID || b.Status == model.BookingStatusCancelled {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			return false
		}
	}
	return true
}

func (s *Store) CreateBooking(ctx context.Context, booking *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isSlotFreeLocked(booking.DoctorID, booking.StartTime, booking.EndTime) {
		return apperrors.SlotConflict(nil)
	}

	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	stored := *booking
	s.bookings[booking.ID] = &stored
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", nil)
	}
	out := *b
	return &out, nil
}

func (s *Store) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Booking
	for _, b := range s.bookings {
		if filters != nil {
			if filters.DoctorID != uuid.Nil && b.DoctorID != filters.DoctorID {
				continue
			}
			if filters.Status != "" && b.Status != filters.Status {
				continue
			}
			if !filters.StartDate.IsZero() && b.StartTime.Before(filters.StartDate) {
				continue
			}
			if !filters.EndDate.IsZero() && b.EndTime.After(filters.EndDate) {
				continue
			}
		}
		copied := *b
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) Update(ctx context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[booking.ID]; !ok {
		return apperrors.NotFound("booking", nil)
	}
	booking.UpdatedAt = time.Now()
	stored := *booking
	s.bookings[booking.ID] = &stored
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByMail[user.Email]; ok {
		return apperrors.BadRequest("email already registered", nil)
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	s.users[user.ID] = &stored
	s.usersByMail[user.Email] = user.ID
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByMail[email]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	out := *s.users[id]
	return &out, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	out := *u
	return &out, nil
}

func (s *Store) CreateEvent(ctx context.Context, event *model.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	stored := *event
	s.outbox = append(s.outbox, &stored)
	return nil
}

func (s *Store) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.OutboxEvent
	for _, e := range s.outbox {
		if e.Status != model.OutboxStatusPending {
			continue
		}
		copied := *e
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) UpdateEventStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.outbox {
		if e.ID == id {
			now := time.Now()
			e.Status = status
			e.ErrorMessage = errMsg
			e.ProcessedAt = &now
			e.RetryCount++
			return nil
		}
	}
	return apperrors.NotFound("outbox event", nil)
}
