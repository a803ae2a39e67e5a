package ports

import (
	"context"
	"time"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// Registration carries the data needed to open an account.
type Registration struct {
	Email       string
	Secret      string
	DisplayName string
}

// IssuedToken is a signed credential together with the actor it represents.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Actor     *domain.Actor
}

// AuthService is the credential-issuing endpoint.
type AuthService interface {
	Signup(ctx context.Context, reg Registration) (*IssuedToken, error)
	Login(ctx context.Context, identifier, secret string) (*IssuedToken, error)
	// Verify resolves a raw token to the current actor. Inactive actors and
	// revoked or expired tokens yield domain.ErrUnauthenticated.
	Verify(ctx context.Context, rawToken string) (*domain.Actor, error)
	Refresh(ctx context.Context, rawToken string) (*IssuedToken, error)
	Logout(ctx context.Context, rawToken string) error
}

// UserAdminService manages roles and activation. Callers must be admins.
type UserAdminService interface {
	ChangeRole(ctx context.Context, caller *domain.Actor, userID string, role domain.Role) (*domain.Actor, error)
	SetActive(ctx context.Context, caller *domain.Actor, userID string, active bool) (*domain.Actor, error)
}
