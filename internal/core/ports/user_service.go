package ports

import "context"

// RolePayload is the caller-facing role representation.
type RolePayload struct {
	ID          int64
	Description string
}

// UserPayload is the DTO exchanged between the transport layer and UserService.
// Password carries plaintext on input and is always empty on output.
type UserPayload struct {
	ID        int64
	FirstName string
	LastName  string
	UserName  string
	Password  string
	Enabled   bool
	Phone     string
	Gender    string
	Role      RolePayload
}

// UserService defines the user lifecycle use cases.
type UserService interface {
	ListAllUsers(ctx context.Context) ([]UserPayload, error)
	FindByUserName(ctx context.Context, username string) (*UserPayload, error)
	// Save may return a non-nil result together with an error wrapping
	// domain.ErrIdentitySync: the user is persisted but not mirrored.
	Save(ctx context.Context, payload UserPayload) (*UserPayload, error)
	Update(ctx context.Context, payload UserPayload) (*UserPayload, error)
	DeleteByUserName(ctx context.Context, username string) error
	Delete(ctx context.Context, username string) error
	ListAllByRole(ctx context.Context, role string) ([]UserPayload, error)
}
