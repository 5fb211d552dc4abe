package auth

import (
	"github.com/OpenCCS/ccs/internal/approval/model"
)

// AuthContext represents the authentication context available in a request.
// This is a transient context that is injected into the request by the auth
// middleware. It carries the user resolved from the bearer token.
type AuthContext struct {
	User *model.User
}

// Role returns the authenticated user's role, or the empty role when no user
// is attached.
func (ac *AuthContext) Role() model.Role {
	if ac == nil || ac.User == nil {
		return ""
	}
	return ac.User.Role
}
