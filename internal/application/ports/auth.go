package ports

import (
	"context"

	"files-manager-api/internal/domain/user"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	// Resolve returns ErrUnauthorized for a missing, unknown or expired token.
	Resolve(ctx context.Context, token string) (user.ID, error)
}

type SessionCache interface {
	Issue(ctx context.Context, userID user.ID) (string, error)
	Resolve(ctx context.Context, token string) (user.ID, bool, error)
	Revoke(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}
