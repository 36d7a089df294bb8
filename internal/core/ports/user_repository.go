package ports

import (
	"context"

	"github.com/madunda/task-manager-api/internal/core/domain"
)

// SortSpec is a single-field sort parsed from a "field:asc|desc" query value.
type SortSpec struct {
	Field string
	Desc  bool
}

// ListUsersFilter narrows and pages an admin user listing.
type ListUsersFilter struct {
	Admin *bool
	Skip  int64
	Limit int64
	Sort  *SortSpec
}

// UserRepository defines persistence for user accounts and their auth state.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDWithToken resolves a user only when the exact token string is
	// present in the stored token list.
	FindByIDWithToken(ctx context.Context, id, token string) (*domain.User, error)

	AddToken(ctx context.Context, id, token string) error
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error

	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListUsersFilter) ([]domain.User, error)

	SetAvatar(ctx context.Context, id string, image []byte) error
	FindAvatar(ctx context.Context, id string) ([]byte, error)
	ClearAvatar(ctx context.Context, id string) error
}
