package file

import (
	"files-manager-api/internal/domain/file"
)

func ToResponseNode(n file.Node) Node {
	return Node{
		ID:       int64(n.ID),
		UserID:   int64(n.UserID),
		Name:     n.Name,
		Type:     string(n.Type),
		IsPublic: n.IsPublic,
		ParentID: int64(n.ParentID),
	}
}

func ToResponseNodes(ns file.Nodes) Nodes {
	out := make(Nodes, len(ns))
	for idx, n := range ns {
		out[idx] = ToResponseNode(*n)
	}

	return out
}

func ToDomainNewNode(req CreateRequest) file.NewNode {
	return file.NewNode{
		Name:     req.Name,
		Type:     file.Type(req.Type),
		ParentID: file.ID(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	}
}
