package domain

import (
	"context"
	"time"
)

// UserEventType names a lifecycle transition recorded in the audit trail.
type UserEventType string

const (
	UserCreated     UserEventType = "created"
	UserUpdated     UserEventType = "updated"
	UserSoftDeleted UserEventType = "soft_deleted"
	UserPurged      UserEventType = "purged"
)

// UserEvent is an append-only audit record. UserName is always the name the
// caller used, never the mangled name of a deleted record.
type UserEvent struct {
	UserID     int64
	UserName   string
	Type       UserEventType
	Actor      string
	OccurredAt time.Time
}

type actorKey struct{}

// WithActor attaches the authenticated caller to ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the caller attached by WithActor, or "system".
func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "system"
}
