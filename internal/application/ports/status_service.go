package ports

import "context"

type (
	Health struct {
		Redis bool `json:"redis"`
		DB    bool `json:"db"`
	}
	Stats struct {
		Users int64 `json:"users"`
		Files int64 `json:"files"`
	}
)

type StatusService interface {
	Health(ctx context.Context) Health
	Stats(ctx context.Context) (Stats, error)
}
