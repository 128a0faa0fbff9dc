package services

import (
	"context"
	"fmt"

	"files-manager-api/internal/application/ports"
	domainFile "files-manager-api/internal/domain/file"
	domainUser "files-manager-api/internal/domain/user"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusService struct {
	sessions       Pinger
	db             Pinger
	userRepository domainUser.Repository
	fileRepository domainFile.Repository
}

func NewStatusService(
	sessions Pinger,
	db Pinger,
	userRepository domainUser.Repository,
	fileRepository domainFile.Repository,
) ports.StatusService {
	return &StatusService{
		sessions:       sessions,
		db:             db,
		userRepository: userRepository,
		fileRepository: fileRepository,
	}
}

func (ss *StatusService) Health(ctx context.Context) ports.Health {
	return ports.Health{
		Redis: ss.sessions.Ping(ctx) == nil,
		DB:    ss.db.Ping(ctx) == nil,
	}
}

func (ss *StatusService) Stats(ctx context.Context) (ports.Stats, error) {
	users, err := ss.userRepository.CountUsers(ctx)
	if err != nil {
		return ports.Stats{}, fmt.Errorf("count users: %w", err)
	}
	files, err := ss.fileRepository.CountNodes(ctx)
	if err != nil {
		return ports.Stats{}, fmt.Errorf("count files: %w", err)
	}

	return ports.Stats{Users: users, Files: files}, nil
}
