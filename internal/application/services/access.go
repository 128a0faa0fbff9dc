package services

import (
	"files-manager-api/internal/domain/file"
	"files-manager-api/internal/domain/user"
)

// CanRead grants public nodes to everyone and private nodes to their owner.
func CanRead(n *file.Node, requester user.ID) bool {
	if n == nil {
		return false
	}
	return n.IsPublic || CanMutate(n, requester)
}

// CanMutate grants only the owner, and never the anonymous requester.
func CanMutate(n *file.Node, requester user.ID) bool {
	if n == nil || requester == user.Anonymous {
		return false
	}
	return n.UserID == requester
}
