package auth

import (
	"context"

	"github.com/spec-kit/meditrack/internal/domain"
)

// AccessGuard hands out role-bound gates sharing one Authenticator.
type AccessGuard struct {
	authn *Authenticator
}

// NewAccessGuard constructs an AccessGuard.
func NewAccessGuard(authn *Authenticator) *AccessGuard {
	return &AccessGuard{authn: authn}
}

// RequireRole returns a gate admitting only users whose role equals role.
func (g *AccessGuard) RequireRole(role domain.Role) *Gate {
	return &Gate{authn: g.authn, role: role, restricted: true}
}

// Authenticated returns a gate admitting any resolved user.
func (g *AccessGuard) Authenticated() *Gate {
	return &Gate{authn: g.authn}
}

// Gate is an immutable authorization check. It is safe for concurrent use.
type Gate struct {
	authn      *Authenticator
	role       domain.Role
	restricted bool
}

// Role returns the role the gate requires, empty for Authenticated gates.
func (g *Gate) Role() domain.Role {
	return g.role
}

// Check resolves the token and enforces the gate's role.
func (g *Gate) Check(ctx context.Context, token string) (*domain.User, error) {
	user, err := g.authn.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if g.restricted && user.Role != g.role {
		return nil, ErrForbidden
	}
	return user, nil
}
