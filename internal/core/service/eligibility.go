package service

import (
	"context"

	"github.com/ticketing/user-service/internal/core/domain"
	"github.com/ticketing/user-service/internal/core/ports"
)

// dependencyCounter reports how many live work items block deleting a user.
type dependencyCounter func(ctx context.Context, user *domain.User) (int64, error)

// deletionRules maps a role description to the dependency that must be empty
// before a user with that role may be soft-deleted. Roles absent from the map
// have no precondition.
type deletionRules map[string]dependencyCounter

func newDeletionRules(projects ports.ProjectChecker, tasks ports.TaskChecker) deletionRules {
	return deletionRules{
		domain.RoleManager:  projects.CountLiveProjectsManagedBy,
		domain.RoleEmployee: tasks.CountLiveTasksAssignedTo,
	}
}

// canDelete reports whether user owns no blocking work items.
func (r deletionRules) canDelete(ctx context.Context, user *domain.User) (bool, error) {
	count, ok := r[user.Role.Description]
	if !ok {
		return true, nil
	}
	n, err := count(ctx, user)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
