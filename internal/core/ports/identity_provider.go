package ports

import "context"

// IdentityProvider mirrors account changes in the external auth system.
// Implementations must honour ctx cancellation.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, payload UserPayload) error
	DeactivateAccount(ctx context.Context, username string) error
}
