package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/drbooking/booking-api/internal/model"
	"github.com/drbooking/booking-api/internal/repository"
)

// Constructors matching the postgres package so main can wire either
// driver interchangeably. The Store itself already satisfies the
// reference-data and booking interfaces.

func NewReferenceDataRepository(s *Store) repository.ReferenceDataRepository {
	return s
}

func NewBookingRepository(s *Store) repository.BookingRepository {
	return s
}

func NewUserRepository(s *Store) repository.UserRepository {
	return userRepo{s: s}
}

func NewOutboxRepository(s *Store) repository.OutboxRepository {
	return outboxRepo{s: s}
}

type userRepo struct {
	s *Store
}

func (r userRepo) Create(ctx context.Context, user *model.User) error {
	return r.s.CreateUser(ctx, user)
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.s.GetUserByEmail(ctx, email)
}

func (r userRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.s.GetUser(ctx, id)
}

type outboxRepo struct {
	s *Store
}

func (r outboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	return r.s.CreateEvent(ctx, event)
}

func (r outboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return r.s.GetPendingEvents(ctx, limit)
}

func (r outboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	return r.s.UpdateEventStatus(ctx, id, status, errMsg)
}
