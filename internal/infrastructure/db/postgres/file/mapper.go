package file

import (
	domain "files-manager-api/internal/domain/file"
	"files-manager-api/internal/domain/user"
)

func fromDBModel(model *Node) *domain.Node {
	var n = &domain.Node{
		ID:       domain.ID(model.ID),
		UserID:   user.ID(model.UserID),
		Name:     model.Name,
		Type:     domain.Type(model.Type),
		IsPublic: model.IsPublic,
		ParentID: domain.ID(model.ParentID),
		Status:   domain.Status(model.Status),

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.LocalPath != nil {
		n.LocalPath = *model.LocalPath
	}

	return n
}

func fromDBModels(models *Nodes) domain.Nodes {
	ns := make(domain.Nodes, len(*models))
	for idx, n := range *models {
		ns[idx] = fromDBModel(n)
	}

	return ns
}

// localPath keeps folders at NULL so the schema CHECK holds.
func localPath(n *domain.Node) *string {
	if n.LocalPath == "" {
		return nil
	}
	p := n.LocalPath
	return &p
}
