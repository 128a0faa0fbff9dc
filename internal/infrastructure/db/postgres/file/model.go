package file

import (
	"time"
)

type (
	Node struct {
		ID        int64
		UserID    int64
		Name      string
		Type      string
		IsPublic  bool
		ParentID  int64
		LocalPath *string
		Status    string

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Nodes []*Node
)
