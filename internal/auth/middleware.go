package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/meditrack/internal/domain"
	"github.com/spec-kit/meditrack/internal/observability"
	apperrors "github.com/spec-kit/meditrack/pkg/util/errorutil"
)

const userKey = "auth_user"

const unauthorizedMessage = "could not validate credentials"

// AuthMiddleware adapts gates to Fiber handlers.
type AuthMiddleware struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuthMiddleware constructs middleware. metrics may be nil.
func NewAuthMiddleware(logger *zap.Logger, metrics *observability.Metrics) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{logger: logger, metrics: metrics}
}

// Require runs gate against the request's bearer token before the next handler.
func (m *AuthMiddleware) Require(gate *Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return m.reject(c, "missing_token", ErrInvalidToken)
		}

		user, err := gate.Check(c.UserContext(), token)
		switch {
		case err == nil:
		case errors.Is(err, ErrInvalidToken):
			return m.reject(c, "invalid_token", err)
		case errors.Is(err, ErrUserNotFound):
			return m.reject(c, "user_not_found", err)
		case errors.Is(err, ErrForbidden):
			return m.reject(c, "forbidden", err)
		default:
			return apperrors.NewInternalError(err)
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

func (m *AuthMiddleware) reject(c *fiber.Ctx, reason string, err error) error {
	m.logger.Debug("request rejected by auth gate",
		zap.String("reason", reason),
		zap.String("path", c.Path()),
	)
	m.metrics.RecordAuthRejection(reason)

	if errors.Is(err, ErrForbidden) {
		return apperrors.NewForbidden("insufficient role")
	}
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return apperrors.NewUnauthorized(unauthorizedMessage)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// UserFromContext retrieves the user stored by Require.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(userKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
