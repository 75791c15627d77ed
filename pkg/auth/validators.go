package auth

import "time"

// LoginPayload represents the login request body. Presence is checked by the
// service so the API and the login page share the same message.
type LoginPayload struct {
	Username string `json:"username" form:"username" mod:"trim"`
	Password string `json:"password" form:"password"`
	Next     string `json:"-" form:"next" mod:"trim"`
}

// UserResponse is the account summary returned by the auth endpoints.
type UserResponse struct {
	ID         int        `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	DateJoined *time.Time `json:"date_joined,omitempty"`
}

type LoginResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
