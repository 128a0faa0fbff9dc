package ports

import (
	"context"
	"io"

	"files-manager-api/internal/domain/file"
	"files-manager-api/internal/domain/user"
)

type FileService interface {
	CreateNode(ctx context.Context, requester user.ID, in file.NewNode) (*file.Node, error)
	GetNode(ctx context.Context, requester user.ID, id file.ID) (*file.Node, error)
	ListNodes(ctx context.Context, requester user.ID, parentID file.ID, page int) (file.Nodes, error)
	SetPublic(ctx context.Context, requester user.ID, id file.ID, isPublic bool) (*file.Node, error)
	OpenContent(ctx context.Context, requester user.ID, id file.ID, width int) (*file.Content, error)
}

type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
}

type JobQueue interface {
	Enqueue(ctx context.Context, job file.Job) error
}

type JobParser interface {
	ParseJob(token string) (file.Job, error)
}
