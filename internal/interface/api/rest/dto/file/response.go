package file

type (
	Node struct {
		ID       int64  `json:"id"`
		UserID   int64  `json:"userId"`
		Name     string `json:"name"`
		Type     string `json:"type"`
		IsPublic bool   `json:"isPublic"`
		ParentID int64  `json:"parentId"`
	}
	Nodes []Node
)
