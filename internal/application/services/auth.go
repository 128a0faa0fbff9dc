package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"files-manager-api/internal/application/ports"
	"files-manager-api/internal/domain/user"
)

type AuthService struct {
	userRepository user.Repository
	sessions       ports.SessionCache
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
}

func NewAuthService(
	userRepository user.Repository,
	sessions ports.SessionCache,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.AuthService {
	return &AuthService{
		userRepository: userRepository,
		sessions:       sessions,
		logger:         logger,
		mCounter:       mCounter,
	}
}

func (as *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrUnauthorized
	}

	u, err := as.userRepository.FetchUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if u == nil {
		return "", ErrUnauthorized
	}
	if err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrUnauthorized
	}

	token, err := as.sessions.Issue(ctx, u.ID)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	as.mCounter.WithLabelValues("logins_total").Inc()

	return token, nil
}

func (as *AuthService) Logout(ctx context.Context, token string) error {
	if _, err := as.Resolve(ctx, token); err != nil {
		return err
	}
	if err := as.sessions.Revoke(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (as *AuthService) Resolve(ctx context.Context, token string) (user.ID, error) {
	if token == "" {
		return user.Anonymous, ErrUnauthorized
	}

	id, ok, err := as.sessions.Resolve(ctx, token)
	if err != nil {
		return user.Anonymous, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		return user.Anonymous, ErrUnauthorized
	}

	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
