package ports

import (
	"context"

	"github.com/ticketing/user-service/internal/core/domain"
)

// ProjectChecker counts live (not soft-deleted) projects managed by a user.
type ProjectChecker interface {
	CountLiveProjectsManagedBy(ctx context.Context, user *domain.User) (int64, error)
}

// TaskChecker counts live (not soft-deleted) tasks assigned to a user.
type TaskChecker interface {
	CountLiveTasksAssignedTo(ctx context.Context, user *domain.User) (int64, error)
}
