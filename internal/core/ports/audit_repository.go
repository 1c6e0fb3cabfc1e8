package ports

import (
	"context"

	"github.com/ticketing/user-service/internal/core/domain"
)

// AuditRepository persists user lifecycle events to the audit collection.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.UserEvent) error
}
