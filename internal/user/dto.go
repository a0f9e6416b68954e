package user

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
}

// AddFriendRequest names the user to befriend
type AddFriendRequest struct {
	FriendID string `json:"friend_id"`
}
