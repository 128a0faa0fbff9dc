package user

import (
	"files-manager-api/internal/domain/user"
)

func ToResponseUser(uDomain user.User) User {
	return User{
		ID:    int64(uDomain.ID),
		Email: uDomain.Email,
	}
}
