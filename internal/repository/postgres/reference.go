package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/drbooking/booking-api/internal/model"
	apperrors "github.com/drbooking/booking-api/pkg/errors"
)

func (r *referenceDataRepository) ListSpecialties(ctx context.Context) ([]*model.Specialty, error) {
	query := `
		SELECT id, name, description
		FROM specialties
		ORDER BY name ASC
	`
	var specialties []*model.Specialty
	if err := r.db.SelectContext(ctx, &specialties, query); err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

func (r *referenceDataRepository) ListDoctors(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	query := `
		SELECT id, first_name, last_name, specialty_id, image_url,
			   location, gender, rating, review_count
		FROM doctors
	`
	args := []interface{}{}

	if filters != nil && filters.SpecialtyID != uuid.Nil {
		query += " WHERE specialty_id = $1"
		args = append(args, filters.SpecialtyID)
	}

	query += " ORDER BY last_name ASC, first_name ASC"

	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *referenceDataRepository) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, first_name, last_name, specialty_id, image_url,
			   location, gender, rating, review_count
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}
