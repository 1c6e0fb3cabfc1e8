package ports

import "context"

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UserLocker serialises mutations on a single username. The returned unlock
// func must be called exactly once.
type UserLocker interface {
	Lock(ctx context.Context, username string) (unlock func(), err error)
}
