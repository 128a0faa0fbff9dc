package file

import "io"

type (
	// NewNode is an upload request as received from a client. Data is the
	// base64 encoded payload and stays empty for folders.
	NewNode struct {
		Name     string
		Type     Type
		ParentID ID
		IsPublic bool
		Data     string
	}

	// Content is an opened primary or derivative blob. The caller closes Body.
	Content struct {
		Name        string
		ContentType string
		Size        int64
		Body        io.ReadCloser
	}
)
