package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ticketing/user-service/internal/core/domain"
)

const userEventsCollection = "user_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(userEventsCollection)}
}

// InsertEvent appends a lifecycle event to the user_events collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.UserEvent) error {
	doc := bson.M{
		"user_id":      event.UserID,
		"user_name":    event.UserName,
		"type":         string(event.Type),
		"actor":        event.Actor,
		"occurred_at":  event.OccurredAt.UTC(),
		"processed_at": time.Now().UTC(),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

// EnsureIndexes indexes events by username, newest first.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_name", Value: 1}, {Key: "occurred_at", Value: -1}},
		Options: options.Index().SetName("user_name_occurred_at"),
	})
	return err
}
