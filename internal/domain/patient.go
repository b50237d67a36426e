package domain

import "time"

// Patient is a clinical record owned by exactly one doctor.
type Patient struct {
	ID        string
	Name      string
	Age       int
	Condition string
	DoctorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
