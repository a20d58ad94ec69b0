package models

import "strings"

// Role gates what a signed-in user may do. The backend labels ordinary
// accounts "authenticated"; that label is mapped to RoleUser when the session
// is persisted, any other label is kept verbatim.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) CanManageListings() bool {
	return r == RoleAdmin
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	FullName string `json:"full_name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// NewSessionUser normalizes a user record from an auth response into the form
// stored in the session: the display name falls back to the local part of the
// email address, and the generic "authenticated" role becomes RoleUser.
func NewSessionUser(u User) User {
	if u.FullName == "" {
		u.FullName = strings.SplitN(u.Email, "@", 2)[0]
	}
	if u.Role == "authenticated" {
		u.Role = RoleUser
	}
	return u
}

type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// AuthResponse is the payload of login and registration. A registration
// response may carry a user without a token.
type AuthResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	User        *User  `json:"user,omitempty"`
	Error       string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
}
