package file

import (
	"context"
	"time"

	"files-manager-api/internal/domain/user"
)

type Repository interface {
	CreateNode(ctx context.Context, req *Node) (*Node, error)
	FetchNode(ctx context.Context, id ID) (*Node, error)
	FetchOwnedNode(ctx context.Context, id ID, userID user.ID) (*Node, error)
	FetchNodes(ctx context.Context, userID user.ID, parentID ID, page int) (Nodes, error)
	FetchStaleNodes(ctx context.Context, status Status, before time.Time, limit int) (Nodes, error)
	UpdatePublic(ctx context.Context, id ID, userID user.ID, isPublic bool) (*Node, error)
	TransitionStatus(ctx context.Context, id ID, to Status, from ...Status) (bool, error)
	CountNodes(ctx context.Context) (int64, error)
}
