package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/spec-kit/meditrack/internal/domain"
)

// UserStore is the lookup the authenticator needs from persistence.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticator resolves bearer tokens to stored users.
type Authenticator struct {
	tokens *TokenCodec
	users  UserStore
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(tokens *TokenCodec, users UserStore) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Resolve verifies the token and loads its subject.
// It returns ErrInvalidToken or ErrUserNotFound for rejected callers; any
// other error comes from the store and is not an authentication verdict.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*domain.User, error) {
	subject, err := a.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := a.users.GetByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
