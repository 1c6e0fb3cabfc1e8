package ports

import (
	"context"

	"github.com/ticketing/user-service/internal/core/domain"
)

// UserRepository defines persistence operations for user records.
// "Active" means the soft-delete flag is false.
type UserRepository interface {
	// FindActiveByUsername returns domain.ErrUserNotFound when no active record matches.
	FindActiveByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAllActiveOrderByFirstNameDesc(ctx context.Context) ([]*domain.User, error)
	// FindActiveByRoleDescription matches the role description case-insensitively.
	FindActiveByRoleDescription(ctx context.Context, description string) ([]*domain.User, error)
	// Save inserts the user when ID is zero and otherwise replaces the record
	// whose ID and Version match, returning domain.ErrConcurrentModification
	// on a version mismatch.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	// DeleteByUsername physically removes every record with the username.
	DeleteByUsername(ctx context.Context, username string) error
}
