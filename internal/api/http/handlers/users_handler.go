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

// UsersHandler exposes registration, login and profile endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return apperrors.NewConflict("email already registered", nil)
		}
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return apperrors.NewValidationError("invalid payload", map[string]any{"Password": "must be at most 72 bytes"})
		}
		return apperrors.NewInternalError(err)
	}

	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Login handles POST /login with form-encoded username and password.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var form dto.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewBadRequest("incorrect email or password")
	}
	if form.Username == "" || form.Password == "" {
		return apperrors.NewBadRequest("incorrect email or password")
	}

	result, err := h.auth.Login(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewBadRequest("incorrect email or password")
		}
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(dto.TokenResponse{AccessToken: result.AccessToken, TokenType: "bearer"})
}

// Me handles GET /me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}
	return c.JSON(dto.NewUserResponse(user))
}
