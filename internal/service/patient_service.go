package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/meditrack/internal/domain"
	"github.com/spec-kit/meditrack/internal/repository"
)

// PatientInput carries editable patient fields.
type PatientInput struct {
	Name      string
	Age       int
	Condition string
}

// PatientService manages patient records on behalf of doctors and admins.
type PatientService struct {
	patients repository.PatientRepository
}

// NewPatientService builds the service.
func NewPatientService(patients repository.PatientRepository) *PatientService {
	return &PatientService{patients: patients}
}

// Create adds a patient owned by doctor.
func (s *PatientService) Create(ctx context.Context, doctor *domain.User, in PatientInput) (*domain.Patient, error) {
	patient := &domain.Patient{
		Name:      strings.TrimSpace(in.Name),
		Age:       in.Age,
		Condition: strings.TrimSpace(in.Condition),
		DoctorID:  doctor.ID,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// ListMine returns the patients owned by doctor.
func (s *PatientService) ListMine(ctx context.Context, doctor *domain.User) ([]domain.Patient, error) {
	return s.patients.ListByDoctor(ctx, doctor.ID)
}

// Update replaces a patient's fields. Patients owned by another doctor are
// reported as domain.ErrNotFound.
func (s *PatientService) Update(ctx context.Context, doctor *domain.User, id string, in PatientInput) (*domain.Patient, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	patient := &domain.Patient{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Age:       in.Age,
		Condition: strings.TrimSpace(in.Condition),
		DoctorID:  doctor.ID,
	}
	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// Delete removes a patient owned by doctor.
func (s *PatientService) Delete(ctx context.Context, doctor *domain.User, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return s.patients.Delete(ctx, id, doctor.ID)
}

// ListAll returns every patient record.
func (s *PatientService) ListAll(ctx context.Context) ([]domain.Patient, error) {
	return s.patients.ListAll(ctx)
}
