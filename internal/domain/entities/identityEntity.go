package entities

// UserProfile is the locally persisted identity of the signed-in user.
type UserProfile struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role,omitempty"`
}

func (p UserProfile) IsAdmin() bool {
	return p.Role == "ADMIN"
}
