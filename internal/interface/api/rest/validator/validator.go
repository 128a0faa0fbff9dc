package validator

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"files-manager-api/internal/domain/file"
)

var (
	ErrInvalidID       = errors.New("id must be a positive integer")
	ErrInvalidParentID = errors.New("parentId must be a non-negative integer")
	ErrInvalidPage     = errors.New("page must be a non-negative integer")
	ErrInvalidSize     = errors.New("size must be one of 100, 250, 500")
)

// ParseID reads a path id. Only base-10 positive integers are ids.
func ParseID(s string) (file.ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidID
	}
	return file.ID(v), nil
}

// ParseParentID maps an absent or empty parentId to the root.
func ParseParentID(s string) (file.ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return file.Root, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, ErrInvalidParentID
	}
	return file.ID(v), nil
}

// MaxPage is the last page whose row offset still fits in an int.
const MaxPage = math.MaxInt / file.PageSize

// ParsePage is zero-based; an absent page is the first one.
func ParsePage(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 || p > MaxPage {
		return 0, ErrInvalidPage
	}
	return p, nil
}

// ParseSize returns 0 for the primary blob or one of the thumbnail widths.
func ParseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	w, err := strconv.Atoi(s)
	if err != nil || !file.IsThumbnailWidth(w) {
		return 0, ErrInvalidSize
	}
	return w, nil
}
