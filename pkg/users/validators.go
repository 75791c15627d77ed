package users

import "time"

// SignupPayload represents the signup request body. Presence is checked by
// the service so every missing field gets the same message.
type SignupPayload struct {
	Username        string `json:"username" form:"username" mod:"trim" validate:"omitempty,username,max=150"`
	Email           string `json:"email" form:"email" mod:"trim,lcase" validate:"omitempty,email,max=254"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// ChangePasswordPayload represents the request body for changing the current
// user's password.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type SignupResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type UserResponse struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	DateJoined time.Time `json:"date_joined"`
}

// ProfileResponse is the public view of another user.
type ProfileResponse struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	DateJoined time.Time `json:"date_joined"`
}
