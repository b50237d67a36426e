package dto

import (
	"time"

	"github.com/spec-kit/meditrack/internal/domain"
)

// PatientRequest payload for creating or replacing a patient.
type PatientRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	Age       *int   `json:"age" validate:"required,gte=0,lte=150"`
	Condition string `json:"condition" validate:"max=255"`
}

// PatientResponse is the public view of a patient record.
type PatientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Condition string    `json:"condition"`
	DoctorID  string    `json:"doctor_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPatientResponse maps a domain patient to its public view.
func NewPatientResponse(p *domain.Patient) PatientResponse {
	return PatientResponse{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Condition: p.Condition,
		DoctorID:  p.DoctorID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewPatientList maps a slice of patients, never returning nil.
func NewPatientList(patients []domain.Patient) []PatientResponse {
	out := make([]PatientResponse, 0, len(patients))
	for i := range patients {
		out = append(out, NewPatientResponse(&patients[i]))
	}
	return out
}
