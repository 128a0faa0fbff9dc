package file

import (
	"fmt"
	"time"

	"files-manager-api/internal/domain/user"
)

// Root is the parent id of top-level nodes.
const Root ID = 0

// PageSize bounds every listing.
const PageSize = 20

type (
	ID     int64
	Type   string
	Status string

	Node struct {
		ID        ID
		UserID    user.ID
		Name      string
		Type      Type
		IsPublic  bool
		ParentID  ID
		LocalPath string
		Status    Status

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Nodes []*Node

	// Job is the unit of derivation work carried by the queue.
	Job struct {
		FileID ID
		UserID user.ID
	}
)

const (
	TypeFolder Type = "folder"
	TypeFile   Type = "file"
	TypeImage  Type = "image"
)

// Lifecycle: folders stop at catalogued, plain files at persisted,
// images move on through queued to derived.
const (
	StatusCatalogued Status = "catalogued"
	StatusPersisted  Status = "persisted"
	StatusQueued     Status = "queued"
	StatusDerived    Status = "derived"
)

// ThumbnailWidths are produced for every image, largest first.
var ThumbnailWidths = []int{500, 250, 100}

func (t Type) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

func (t Type) HasContent() bool { return t == TypeFile || t == TypeImage }

func IsThumbnailWidth(w int) bool {
	for _, tw := range ThumbnailWidths {
		if tw == w {
			return true
		}
	}
	return false
}

// DerivativeKey names the blob holding the width-sized variant of primary.
func DerivativeKey(primary string, width int) string {
	return fmt.Sprintf("%s_%d", primary, width)
}
