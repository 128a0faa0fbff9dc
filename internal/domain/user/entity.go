package user

import (
	"time"
)

// Anonymous is the requester id used when no session could be resolved.
const Anonymous ID = 0

type (
	ID   int64
	User struct {
		ID           ID
		Email        string
		PasswordHash string

		CreatedAt time.Time
	}
)
