package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidID = errors.New("must be a non-negative integer")

// FlexibleID accepts 12, "12", "" and null. Absent and empty mean root.
type FlexibleID int64

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return ErrInvalidID
	}
	*f = FlexibleID(v)

	return nil
}

type CreateRequest struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	ParentID FlexibleID `json:"parentId"`
	IsPublic bool       `json:"isPublic"`
	Data     string     `json:"data"`
}
