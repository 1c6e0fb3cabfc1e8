package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ticketing/user-service/internal/core/domain"
	"github.com/ticketing/user-service/internal/core/ports"
)

const defaultIdentityTimeout = 5 * time.Second

// UserServiceDeps groups the collaborators of UserService.
type UserServiceDeps struct {
	Users    ports.UserRepository
	Projects ports.ProjectChecker
	Tasks    ports.TaskChecker
	Identity ports.IdentityProvider
	Hasher   ports.PasswordHasher
	Locker   ports.UserLocker
	// Audit is optional; nil disables the audit trail.
	Audit ports.AuditRepository
	// IdentityTimeout bounds every identity-provider call. Defaults to 5s.
	IdentityTimeout time.Duration
	Logger          zerolog.Logger
}

// UserService implements the user lifecycle: create, update, lookup,
// role listing, and governed soft deletion.
type UserService struct {
	users           ports.UserRepository
	identity        ports.IdentityProvider
	hasher          ports.PasswordHasher
	locker          ports.UserLocker
	audit           ports.AuditRepository
	rules           deletionRules
	identityTimeout time.Duration
	logger          zerolog.Logger
}

func NewUserService(deps UserServiceDeps) *UserService {
	timeout := deps.IdentityTimeout
	if timeout <= 0 {
		timeout = defaultIdentityTimeout
	}
	return &UserService{
		users:           deps.Users,
		identity:        deps.Identity,
		hasher:          deps.Hasher,
		locker:          deps.Locker,
		audit:           deps.Audit,
		rules:           newDeletionRules(deps.Projects, deps.Tasks),
		identityTimeout: timeout,
		logger:          deps.Logger.With().Str("component", "user_service").Logger(),
	}
}

// ListAllUsers returns every active user ordered by first name, descending.
func (s *UserService) ListAllUsers(ctx context.Context) ([]ports.UserPayload, error) {
	users, err := s.users.FindAllActiveOrderByFirstNameDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return toPayloads(users), nil
}

func (s *UserService) FindByUserName(ctx context.Context, username string) (*ports.UserPayload, error) {
	user, err := s.users.FindActiveByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	p := toPayload(user)
	return &p, nil
}

// Save creates a user. The account is always enabled and the password is
// hashed before persisting. The identity provider receives the original
// payload after the local write; if that call fails the persisted user is
// still returned, together with an error wrapping domain.ErrIdentitySync.
func (s *UserService) Save(ctx context.Context, payload ports.UserPayload) (*ports.UserPayload, error) {
	payload.Enabled = true

	hash, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return nil, fmt.Errorf("save user: hash password: %w", err)
	}

	user := toUser(payload)
	user.ID = 0
	user.PassWord = hash
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	saved, err := s.users.Save(ctx, user)
	if err != nil {
		s.logger.Error().Err(err).Str("username", payload.UserName).Msg("failed to save user")
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.logger.Info().Str("username", saved.UserName).Int64("id", saved.ID).Str("role", saved.Role.Description).Msg("user created")
	s.record(ctx, domain.UserCreated, saved.ID, saved.UserName)

	result := toPayload(saved)
	syncErr := s.syncIdentity(ctx, "create account", payload.UserName, func(ctx context.Context) error {
		return s.identity.CreateAccount(ctx, payload)
	})
	if syncErr != nil {
		return &result, syncErr
	}
	return &result, nil
}

// Update replaces the active user named in payload. The stored ID is kept
// whatever the payload carries. An empty password keeps the stored hash.
func (s *UserService) Update(ctx context.Context, payload ports.UserPayload) (*ports.UserPayload, error) {
	unlock, err := s.locker.Lock(ctx, payload.UserName)
	if err != nil {
		return nil, fmt.Errorf("update user %q: %w", payload.UserName, err)
	}

	err = s.replace(ctx, payload)
	unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", payload.UserName).Msg("user updated")
	return s.FindByUserName(ctx, payload.UserName)
}

func (s *UserService) replace(ctx context.Context, payload ports.UserPayload) error {
	current, err := s.users.FindActiveByUsername(ctx, payload.UserName)
	if err != nil {
		return fmt.Errorf("update user %q: %w", payload.UserName, err)
	}

	updated := toUser(payload)
	updated.ID = current.ID
	updated.Version = current.Version
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	updated.PassWord = current.PassWord
	if payload.Password != "" {
		hash, err := s.hasher.Hash(payload.Password)
		if err != nil {
			return fmt.Errorf("update user %q: hash password: %w", payload.UserName, err)
		}
		updated.PassWord = hash
	}

	if _, err := s.users.Save(ctx, updated); err != nil {
		return fmt.Errorf("update user %q: %w", payload.UserName, err)
	}
	s.record(ctx, domain.UserUpdated, updated.ID, updated.UserName)
	return nil
}

// DeleteByUserName physically removes the user without any eligibility
// check. Reserved for administrative purges.
func (s *UserService) DeleteByUserName(ctx context.Context, username string) error {
	if err := s.users.DeleteByUsername(ctx, username); err != nil {
		return fmt.Errorf("purge user %q: %w", username, err)
	}
	s.logger.Warn().Str("username", username).Msg("user purged")
	s.record(ctx, domain.UserPurged, 0, username)
	return nil
}

// Delete soft-deletes the active user when its role's dependency rule allows
// it, then deactivates the account in the identity provider under the
// original username. The per-username lock is released before the identity
// call.
func (s *UserService) Delete(ctx context.Context, username string) error {
	unlock, err := s.locker.Lock(ctx, username)
	if err != nil {
		return fmt.Errorf("delete user %q: %w", username, err)
	}

	original, err := s.softDelete(ctx, username)
	unlock()
	if err != nil {
		return err
	}

	return s.syncIdentity(ctx, "deactivate account", original, func(ctx context.Context) error {
		return s.identity.DeactivateAccount(ctx, original)
	})
}

func (s *UserService) softDelete(ctx context.Context, username string) (string, error) {
	user, err := s.users.FindActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.NewBusinessRuleError(domain.ReasonUserNotFound)
		}
		return "", fmt.Errorf("delete user %q: %w", username, err)
	}

	ok, err := s.rules.canDelete(ctx, user)
	if err != nil {
		return "", fmt.Errorf("delete user %q: check dependencies: %w", username, err)
	}
	if !ok {
		s.logger.Warn().Str("username", username).Str("role", user.Role.Description).Msg("user has live work items, deletion rejected")
		return "", domain.NewBusinessRuleError(domain.ReasonUserNotDeletable)
	}

	original := user.MarkDeleted()
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.users.Save(ctx, user); err != nil {
		return "", fmt.Errorf("delete user %q: %w", username, err)
	}

	s.logger.Info().Str("username", original).Str("stored_as", user.UserName).Msg("user soft-deleted")
	s.record(ctx, domain.UserSoftDeleted, user.ID, original)
	return original, nil
}

// ListAllByRole returns active users whose role description matches role,
// ignoring case.
func (s *UserService) ListAllByRole(ctx context.Context, role string) ([]ports.UserPayload, error) {
	users, err := s.users.FindActiveByRoleDescription(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role %q: %w", role, err)
	}
	return toPayloads(users), nil
}

// syncIdentity runs call under the identity timeout. Failures are logged and
// returned wrapped with domain.ErrIdentitySync; local state is not rolled back.
func (s *UserService) syncIdentity(ctx context.Context, op, username string, call func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.identityTimeout)
	defer cancel()

	if err := call(ctx); err != nil {
		s.logger.Error().Err(err).Str("op", op).Str("username", username).Msg("identity provider sync failed")
		return fmt.Errorf("%s %q: %w: %w", op, username, domain.ErrIdentitySync, err)
	}
	return nil
}

// record appends an audit event. Failures are logged and never fail the
// operation that already committed.
func (s *UserService) record(ctx context.Context, typ domain.UserEventType, id int64, username string) {
	if s.audit == nil {
		return
	}
	event := &domain.UserEvent{
		UserID:     id,
		UserName:   username,
		Type:       typ,
		Actor:      domain.ActorFrom(ctx),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.audit.InsertEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Str("event", string(typ)).Msg("failed to insert audit event")
	}
}
