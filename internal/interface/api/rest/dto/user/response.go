package user

type (
	User struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	Token struct {
		Token string `json:"token"`
	}
)
