package session

import (
	"context"

	"github.com/dash-ai/backend/internal/models"
)

// AuthError is the user-visible failure of a credential operation. The
// message is safe to show inline; the session stays absent.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

type SignUpAttributes struct {
	DisplayName string
}

// Provider is the identity backend consumed by the store. CurrentSession
// returns (nil, nil) for an absent session; an error means the backend
// itself could not answer.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, string, error)
	SignUp(ctx context.Context, email, password string, attrs SignUpAttributes) (*models.Session, string, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*models.Session, error)
	Changes(ctx context.Context, handler func(models.SessionChange)) error
	Ping(ctx context.Context) error
}
