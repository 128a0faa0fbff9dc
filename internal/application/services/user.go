package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"files-manager-api/internal/application/ports"
	domain "files-manager-api/internal/domain/user"
	userDB "files-manager-api/internal/infrastructure/db/postgres/user"
)

// bcrypt ignores input past 72 bytes
const maxPasswordLen = 72

type UserService struct {
	userRepository domain.Repository
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
	hashCost       int
}

func NewUserService(
	userRepository domain.Repository,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.UserService {
	return &UserService{
		userRepository: userRepository,
		logger:         logger,
		mCounter:       mCounter,
		hashCost:       bcrypt.DefaultCost,
	}
}

func (us *UserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid("email", KindMissing)
	}
	if password == "" {
		return nil, invalid("password", KindMissing)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("email", KindInvalid)
	}
	if len(password) > maxPasswordLen {
		return nil, invalid("password", KindTooLarge)
	}

	existing, err := us.userRepository.FetchUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if existing != nil {
		return nil, invalid("email", KindAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), us.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := us.userRepository.CreateUser(ctx, email, string(hash))
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, userDB.ErrEmailAlreadyExists) {
			return nil, invalid("email", KindAlreadyExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	us.mCounter.WithLabelValues("user_created_total").Inc()

	return u, nil
}

func (us *UserService) FindUserByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}

	return u, nil
}
