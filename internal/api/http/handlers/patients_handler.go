package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/meditrack/internal/api/dto"
	"github.com/spec-kit/meditrack/internal/auth"
	"github.com/spec-kit/meditrack/internal/domain"
	"github.com/spec-kit/meditrack/internal/service"
	apperrors "github.com/spec-kit/meditrack/pkg/util/errorutil"
	"github.com/spec-kit/meditrack/pkg/util/validate"
)

// PatientsHandler exposes patient record endpoints. Every route is mounted
// behind a gate, so the caller is always present in the request locals.
type PatientsHandler struct {
	patients *service.PatientService
}

// NewPatientsHandler constructs handler.
func NewPatientsHandler(patients *service.PatientService) *PatientsHandler {
	return &PatientsHandler{patients: patients}
}

// Create handles POST /patients.
func (h *PatientsHandler) Create(c *fiber.Ctx) error {
	doctor, in, err := h.callerAndInput(c)
	if err != nil {
		return err
	}

	patient, err := h.patients.Create(c.UserContext(), doctor, in)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(dto.NewPatientResponse(patient))
}

// ListMine handles GET /patients.
func (h *PatientsHandler) ListMine(c *fiber.Ctx) error {
	doctor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	patients, err := h.patients.ListMine(c.UserContext(), doctor)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.NewPatientList(patients))
}

// Update handles PUT /patients/:id.
func (h *PatientsHandler) Update(c *fiber.Ctx) error {
	doctor, in, err := h.callerAndInput(c)
	if err != nil {
		return err
	}

	patient, err := h.patients.Update(c.UserContext(), doctor, c.Params("id"), in)
	if err != nil {
		return mapPatientError(err)
	}
	return c.JSON(dto.NewPatientResponse(patient))
}

// Delete handles DELETE /patients/:id.
func (h *PatientsHandler) Delete(c *fiber.Ctx) error {
	doctor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	if err := h.patients.Delete(c.UserContext(), doctor, c.Params("id")); err != nil {
		return mapPatientError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListAll handles GET /patients/all.
func (h *PatientsHandler) ListAll(c *fiber.Ctx) error {
	patients, err := h.patients.ListAll(c.UserContext())
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.NewPatientList(patients))
}

func (h *PatientsHandler) callerAndInput(c *fiber.Ctx) (*domain.User, service.PatientInput, error) {
	doctor, ok := auth.UserFromContext(c)
	if !ok {
		return nil, service.PatientInput{}, apperrors.NewUnauthorized("could not validate credentials")
	}

	var req dto.PatientRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, service.PatientInput{}, apperrors.NewBadRequest("invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return nil, service.PatientInput{}, err
	}

	return doctor, service.PatientInput{Name: req.Name, Age: *req.Age, Condition: req.Condition}, nil
}

func mapPatientError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperrors.NewNotFound("patient", nil)
	}
	return apperrors.NewInternalError(err)
}
