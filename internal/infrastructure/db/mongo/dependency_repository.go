package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ticketing/user-service/internal/core/domain"
)

const (
	projectsCollection = "projects"
	tasksCollection    = "tasks"
)

// ProjectChecker implements ports.ProjectChecker over the projects collection.
type ProjectChecker struct {
	coll *mongo.Collection
}

func NewProjectChecker(db *mongo.Database) *ProjectChecker {
	return &ProjectChecker{coll: db.Collection(projectsCollection)}
}

// CountLiveProjectsManagedBy counts non-deleted projects whose assigned
// manager is user.
func (c *ProjectChecker) CountLiveProjectsManagedBy(ctx context.Context, user *domain.User) (int64, error) {
	return countLive(ctx, c.coll, "assigned_manager_id", user.ID)
}

func (c *ProjectChecker) EnsureIndexes(ctx context.Context) error {
	return ensureOwnerIndex(ctx, c.coll, "assigned_manager_id")
}

// TaskChecker implements ports.TaskChecker over the tasks collection.
type TaskChecker struct {
	coll *mongo.Collection
}

func NewTaskChecker(db *mongo.Database) *TaskChecker {
	return &TaskChecker{coll: db.Collection(tasksCollection)}
}

// CountLiveTasksAssignedTo counts non-deleted tasks assigned to user.
func (c *TaskChecker) CountLiveTasksAssignedTo(ctx context.Context, user *domain.User) (int64, error) {
	return countLive(ctx, c.coll, "assigned_employee_id", user.ID)
}

func (c *TaskChecker) EnsureIndexes(ctx context.Context) error {
	return ensureOwnerIndex(ctx, c.coll, "assigned_employee_id")
}

func countLive(ctx context.Context, coll *mongo.Collection, ownerField string, ownerID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := coll.CountDocuments(ctx, bson.M{ownerField: ownerID, "is_deleted": false})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", coll.Name(), err)
	}
	return n, nil
}

func ensureOwnerIndex(ctx context.Context, coll *mongo.Collection, ownerField string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: ownerField, Value: 1}, {Key: "is_deleted", Value: 1}},
	})
	return err
}
