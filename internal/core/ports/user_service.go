package ports

import (
	"context"
	"io"

	"github.com/madunda/task-manager-api/internal/core/domain"
)

// RegisterInput carries the allow-listed signup fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// UpdateInput carries the allow-listed profile fields; nil means "leave as is".
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// ListUsersInput mirrors the admin listing query parameters.
type ListUsersInput struct {
	Admin *bool
	Skip  int64
	Limit int64
	// SortBy is the raw "field:asc|desc" query value; unparseable input
	// falls back to natural order.
	SortBy string
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, userID, token string) error
	LogoutAll(ctx context.Context, userID string) error
	Update(ctx context.Context, userID string, input UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, user *domain.User) error
	List(ctx context.Context, input ListUsersInput) ([]domain.User, error)
	DeleteByID(ctx context.Context, id string) (*domain.User, error)
}

// AvatarService covers the upload/resize/serve pipeline for profile images.
type AvatarService interface {
	Store(ctx context.Context, userID, filename string, file io.Reader, size int64) error
	Fetch(ctx context.Context, userID string) ([]byte, error)
	Clear(ctx context.Context, userID string) error
}
