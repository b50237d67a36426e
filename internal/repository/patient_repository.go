package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/meditrack/internal/domain"
)

// PatientRepository defines persistence access for patient records.
// Mutations are scoped to the owning doctor.
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) error
	ListByDoctor(ctx context.Context, doctorID string) ([]domain.Patient, error)
	ListAll(ctx context.Context) ([]domain.Patient, error)
	Update(ctx context.Context, patient *domain.Patient) error
	Delete(ctx context.Context, id, doctorID string) error
}

type patientRepository struct {
	db DBTX
}

// NewPatientRepository returns a Postgres-backed implementation.
func NewPatientRepository(db DBTX) PatientRepository {
	return &patientRepository{db: db}
}

const patientColumns = `id, name, age, condition, doctor_id, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	const query = `
        INSERT INTO patients (name, age, condition, doctor_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	if err := r.db.QueryRow(ctx, query,
		patient.Name,
		patient.Age,
		patient.Condition,
		patient.DoctorID,
	).Scan(&patient.ID, &patient.CreatedAt, &patient.UpdatedAt); err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *patientRepository) ListByDoctor(ctx context.Context, doctorID string) ([]domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE doctor_id=$1 ORDER BY created_at`
	return r.list(ctx, query, doctorID)
}

func (r *patientRepository) ListAll(ctx context.Context) ([]domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *patientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	const query = `
        UPDATE patients SET name=$1, age=$2, condition=$3, updated_at=NOW()
        WHERE id=$4 AND doctor_id=$5
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		patient.Name,
		patient.Age,
		patient.Condition,
		patient.ID,
		patient.DoctorID,
	).Scan(&patient.CreatedAt, &patient.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id, doctorID string) error {
	const query = `DELETE FROM patients WHERE id=$1 AND doctor_id=$2`

	cmd, err := r.db.Exec(ctx, query, id, doctorID)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *patientRepository) list(ctx context.Context, query string, args ...any) ([]domain.Patient, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	patients := make([]domain.Patient, 0)
	for rows.Next() {
		var p domain.Patient
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Age,
			&p.Condition,
			&p.DoctorID,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}
