package domain

import (
	"errors"
	"time"
)

// User models an account holder. Sensitive material (password hash, token
// list, avatar binary) is never rendered into JSON responses.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          int       `json:"age"`
	Admin        bool      `json:"admin"`
	Avatar       []byte    `json:"-"`
	Tokens       []string  `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasToken reports whether the exact token string is in the user's active
// token list. Membership is what makes server-side revocation possible: a
// structurally valid JWT that has been logged out no longer matches.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("unable to login")
	ErrAvatarNotFound     = errors.New("avatar not found")
	ErrAvatarTooLarge     = errors.New("avatar exceeds the size limit")
	ErrAvatarBadType      = errors.New("avatar must be a jpg, jpeg or png file")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)
