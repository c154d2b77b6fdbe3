// Package auth holds the per-request authentication state and the cookie
// session that carries it between requests.
package auth

import (
	"github.com/qs-lzh/coaster-review/internal/model"
)

// Session is either Anonymous or Authenticated with a principal. The zero
// value is Anonymous.
type Session struct {
	user *model.User
}

func Anonymous() Session {
	return Session{}
}

// Authenticated returns Anonymous for a nil user.
func Authenticated(user *model.User) Session {
	return Session{user: user}
}

func (s Session) IsAuthenticated() bool {
	return s.user != nil
}

// User returns the principal, or nil when anonymous.
func (s Session) User() *model.User {
	return s.user
}

func IsAdmin(s Session) bool {
	return s.user != nil && s.user.Role == model.RoleAdmin
}
