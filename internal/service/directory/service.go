package directory

import (
	"context"

	"github.com/google/uuid"

	"github.com/drbooking/booking-api/internal/model"
	"github.com/drbooking/booking-api/internal/repository"
)

// Service exposes the doctor/specialty catalog to the presentation layer.
type Service struct {
	refData repository.ReferenceDataRepository
}

func NewService(refData repository.ReferenceDataRepository) *Service {
	return &Service{refData: refData}
}

func (s *Service) ListSpecialties(ctx context.Context) ([]*model.Specialty, error) {
	return s.refData.ListSpecialties(ctx)
}

func (s *Service) ListDoctors(ctx context.Context, specialtyID uuid.UUID) ([]*model.Doctor, error) {
	var filters *model.DoctorFilters
	if specialtyID != uuid.Nil {
		filters = &model.DoctorFilters{SpecialtyID: specialtyID}
	}
	return s.refData.ListDoctors(ctx, filters)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.refData.GetDoctor(ctx, id)
}
