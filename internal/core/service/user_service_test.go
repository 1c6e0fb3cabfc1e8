package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ticketing/user-service/internal/core/domain"
	"github.com/ticketing/user-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID    map[int64]*domain.User
	nextID  int64
	saves   int
	purged  []string
	saveErr error
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	if u.ID == 0 {
		u.ID = r.nextID
	}
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	r.byID[u.ID] = cloneUser(u)
	return u
}

func (r *stubUserRepo) FindActiveByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.UserName == username && !u.IsDeleted {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) active() []*domain.User {
	var out []*domain.User
	for _, u := range r.byID {
		if !u.IsDeleted {
			out = append(out, cloneUser(u))
		}
	}
	return out
}

func (r *stubUserRepo) FindAllActiveOrderByFirstNameDesc(_ context.Context) ([]*domain.User, error) {
	out := r.active()
	sort.Slice(out, func(i, j int) bool { return out[i].FirstName > out[j].FirstName })
	return out, nil
}

func (r *stubUserRepo) FindActiveByRoleDescription(_ context.Context, description string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.active() {
		if strings.EqualFold(u.Role.Description, description) {
			out = append(out, u)
		}
	}
	return out, nil
}

// Save mirrors the Mongo repository: insert on zero ID, version-checked replace otherwise.
func (r *stubUserRepo) Save(_ context.Context, u *domain.User) (*domain.User, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.saves++
	clone := cloneUser(u)
	if clone.ID == 0 {
		clone.ID = r.nextID
		r.nextID++
		clone.Version = 1
		r.byID[clone.ID] = clone
		return cloneUser(clone), nil
	}
	existing, ok := r.byID[clone.ID]
	if !ok || existing.Version != clone.Version {
		return nil, domain.ErrConcurrentModification
	}
	clone.Version++
	r.byID[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) DeleteByUsername(_ context.Context, username string) error {
	r.purged = append(r.purged, username)
	for id, u := range r.byID {
		if u.UserName == username {
			delete(r.byID, id)
		}
	}
	return nil
}

type stubChecker struct {
	count int64
	err   error
	calls int
}

func (c *stubChecker) CountLiveProjectsManagedBy(_ context.Context, _ *domain.User) (int64, error) {
	c.calls++
	return c.count, c.err
}

func (c *stubChecker) CountLiveTasksAssignedTo(_ context.Context, _ *domain.User) (int64, error) {
	c.calls++
	return c.count, c.err
}

type stubIdentity struct {
	created     []ports.UserPayload
	deactivated []string
	err         error

	// locker lets DeactivateAccount observe whether the user lock is still held.
	locker             *stubLocker
	unlockedAtDeactive []int
}

func (i *stubIdentity) CreateAccount(_ context.Context, p ports.UserPayload) error {
	if i.err != nil {
		return i.err
	}
	i.created = append(i.created, p)
	return nil
}

func (i *stubIdentity) DeactivateAccount(_ context.Context, username string) error {
	if i.locker != nil {
		i.unlockedAtDeactive = append(i.unlockedAtDeactive, i.locker.unlocked)
	}
	if i.err != nil {
		return i.err
	}
	i.deactivated = append(i.deactivated, username)
	return nil
}

type stubHasher struct{}

func (stubHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type stubLocker struct {
	err      error
	locked   []string
	unlocked int
}

func (l *stubLocker) Lock(_ context.Context, username string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, username)
	return func() { l.unlocked++ }, nil
}

type stubAudit struct {
	err    error
	events []domain.UserEvent
}

func (a *stubAudit) InsertEvent(_ context.Context, e *domain.UserEvent) error {
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, *e)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fixture struct {
	repo     *stubUserRepo
	projects *stubChecker
	tasks    *stubChecker
	identity *stubIdentity
	locker   *stubLocker
	audit    *stubAudit
	svc      *UserService
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newStubUserRepo(),
		projects: &stubChecker{},
		tasks:    &stubChecker{},
		identity: &stubIdentity{},
		locker:   &stubLocker{},
		audit:    &stubAudit{},
	}
	f.identity.locker = f.locker
	f.svc = NewUserService(UserServiceDeps{
		Users:    f.repo,
		Projects: f.projects,
		Tasks:    f.tasks,
		Identity: f.identity,
		Hasher:   stubHasher{},
		Locker:   f.locker,
		Audit:    f.audit,
		Logger:   zerolog.Nop(),
	})
	return f
}

func seedUser(repo *stubUserRepo, username, firstName, role string) *domain.User {
	return repo.seed(&domain.User{
		FirstName: firstName,
		LastName:  "Doe",
		UserName:  username,
		PassWord:  "hashed:old",
		Enabled:   true,
		Role:      domain.Role{ID: 1, Description: role},
		Version:   1,
	})
}

var _ ports.UserService = (*UserService)(nil)

// ---------------------------------------------------------------------------
// Lookup / listing
// ---------------------------------------------------------------------------

func TestUserService_FindByUserName_Success(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "alice", "Alice", domain.RoleManager)

	got, err := f.svc.FindByUserName(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserName != "alice" || got.Role.Description != domain.RoleManager {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.Password != "" {
		t.Error("password hash must not be exposed")
	}
}

func TestUserService_FindByUserName_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.FindByUserName(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if f.repo.saves != 0 {
		t.Error("lookup must not mutate the store")
	}
}

func TestUserService_ListAllUsers_OrderedAndActiveOnly(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "a", "Anna", domain.RoleAdmin)
	seedUser(f.repo, "z", "Zed", domain.RoleEmployee)
	seedUser(f.repo, "m", "Mike", domain.RoleManager)
	gone := seedUser(f.repo, "x", "Xena", domain.RoleEmployee)
	f.repo.byID[gone.ID].IsDeleted = true

	users, err := f.svc.ListAllUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, u := range users {
		names = append(names, u.FirstName)
	}
	if strings.Join(names, ",") != "Zed,Mike,Anna" {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestUserService_ListAllUsers_Empty(t *testing.T) {
	f := newFixture()

	users, err := f.svc.ListAllUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected empty list, got %d", len(users))
	}
}

func TestUserService_ListAllByRole_CaseInsensitive(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "e1", "Eve", domain.RoleEmployee)
	seedUser(f.repo, "e2", "Ed", domain.RoleEmployee)
	seedUser(f.repo, "m1", "Max", domain.RoleManager)

	users, err := f.svc.ListAllByRole(context.Background(), "eMpLoYeE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 employees, got %d", len(users))
	}
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestUserService_Save_ForcesEnabledAndHashes(t *testing.T) {
	f := newFixture()

	got, err := f.svc.Save(context.Background(), ports.UserPayload{
		FirstName: "Alice",
		UserName:  "alice",
		Password:  "Abc1",
		Enabled:   false,
		Role:      ports.RolePayload{ID: 2, Description: domain.RoleManager},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Enabled {
		t.Error("returned user must be enabled")
	}

	stored := f.repo.byID[got.ID]
	if !stored.Enabled {
		t.Error("stored user must be enabled")
	}
	if stored.PassWord != "hashed:Abc1" {
		t.Errorf("expected hashed password, got %q", stored.PassWord)
	}
	if stored.IsDeleted {
		t.Error("new user must not be deleted")
	}
}

func TestUserService_Save_MirrorsOriginalPayload(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Save(context.Background(), ports.UserPayload{UserName: "bob", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.identity.created) != 1 {
		t.Fatalf("expected 1 identity create, got %d", len(f.identity.created))
	}
	sent := f.identity.created[0]
	if sent.Password != "pw" {
		t.Errorf("identity provider must receive the plaintext password, got %q", sent.Password)
	}
	if !sent.Enabled {
		t.Error("identity payload must be enabled")
	}
}

func TestUserService_Save_IgnoresPayloadID(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "existing", "Ex", domain.RoleAdmin)

	got, err := f.svc.Save(context.Background(), ports.UserPayload{ID: 1, UserName: "fresh", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID == 1 {
		t.Error("save must allocate a new id")
	}
	if f.repo.byID[1].UserName != "existing" {
		t.Error("existing record must be untouched")
	}
}

func TestUserService_Save_RepoErrorSkipsIdentity(t *testing.T) {
	f := newFixture()
	f.repo.saveErr = domain.ErrUserExists

	_, err := f.svc.Save(context.Background(), ports.UserPayload{UserName: "dup", Password: "pw"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(f.identity.created) != 0 {
		t.Error("identity provider must not be called when persistence fails")
	}
}

func TestUserService_Save_IdentityFailureKeepsUser(t *testing.T) {
	f := newFixture()
	f.identity.err = errors.New("keycloak down")

	got, err := f.svc.Save(context.Background(), ports.UserPayload{UserName: "carol", Password: "pw"})
	if !errors.Is(err, domain.ErrIdentitySync) {
		t.Fatalf("expected ErrIdentitySync, got %v", err)
	}
	if got == nil || got.UserName != "carol" {
		t.Fatalf("expected persisted user alongside the error, got %+v", got)
	}
	if _, err := f.svc.FindByUserName(context.Background(), "carol"); err != nil {
		t.Errorf("local record must survive identity failure: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestUserService_Update_PreservesID(t *testing.T) {
	f := newFixture()
	seeded := seedUser(f.repo, "dave", "Dave", domain.RoleEmployee)

	got, err := f.svc.Update(context.Background(), ports.UserPayload{
		ID:        999,
		FirstName: "David",
		UserName:  "dave",
		Enabled:   true,
		Role:      ports.RolePayload{ID: 3, Description: domain.RoleManager},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != seeded.ID {
		t.Errorf("expected id %d, got %d", seeded.ID, got.ID)
	}
	if got.FirstName != "David" || got.Role.Description != domain.RoleManager {
		t.Errorf("fields not applied: %+v", got)
	}
	if _, ok := f.repo.byID[999]; ok {
		t.Error("payload id must never be used as update target")
	}
	if len(f.repo.byID) != 1 {
		t.Errorf("expected a single record, got %d", len(f.repo.byID))
	}
}

func TestUserService_Update_KeepsHashWhenPasswordEmpty(t *testing.T) {
	f := newFixture()
	seeded := seedUser(f.repo, "erin", "Erin", domain.RoleEmployee)

	if _, err := f.svc.Update(context.Background(), ports.UserPayload{UserName: "erin", FirstName: "Erin"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.repo.byID[seeded.ID].PassWord != "hashed:old" {
		t.Errorf("expected stored hash kept, got %q", f.repo.byID[seeded.ID].PassWord)
	}

	if _, err := f.svc.Update(context.Background(), ports.UserPayload{UserName: "erin", Password: "new"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.repo.byID[seeded.ID].PassWord != "hashed:new" {
		t.Errorf("expected new hash, got %q", f.repo.byID[seeded.ID].PassWord)
	}
}

func TestUserService_Update_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Update(context.Background(), ports.UserPayload{UserName: "ghost"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if f.locker.unlocked != 1 {
		t.Errorf("lock must be released, unlocked=%d", f.locker.unlocked)
	}
}

func TestUserService_Update_LockFailure(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "frank", "Frank", domain.RoleEmployee)
	f.locker.err = domain.ErrUserLocked

	_, err := f.svc.Update(context.Background(), ports.UserPayload{UserName: "frank"})
	if !errors.Is(err, domain.ErrUserLocked) {
		t.Fatalf("expected ErrUserLocked, got %v", err)
	}
	if f.repo.saves != 0 {
		t.Error("no write may happen without the lock")
	}
}

// ---------------------------------------------------------------------------
// Governed delete
// ---------------------------------------------------------------------------

func TestUserService_Delete_ManagerWithoutProjects(t *testing.T) {
	f := newFixture()
	alice := seedUser(f.repo, "alice", "Alice", domain.RoleManager)

	if err := f.svc.Delete(context.Background(), "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := f.repo.byID[alice.ID]
	if !stored.IsDeleted {
		t.Error("expected soft-delete flag set")
	}
	if stored.UserName != domain.DeletedUserName("alice", alice.ID) {
		t.Errorf("expected mangled username, got %s", stored.UserName)
	}
	if len(f.identity.deactivated) != 1 || f.identity.deactivated[0] != "alice" {
		t.Errorf("expected one deactivation for alice, got %v", f.identity.deactivated)
	}
	if f.projects.calls != 1 || f.tasks.calls != 0 {
		t.Errorf("manager must consult projects only: projects=%d tasks=%d", f.projects.calls, f.tasks.calls)
	}

	for i := 0; i < 3; i++ {
		if _, err := f.svc.FindByUserName(context.Background(), "alice"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("deleted user must stay invisible, got %v", err)
		}
	}
}

func TestUserService_Delete_ManagerWithProjects(t *testing.T) {
	f := newFixture()
	bob := seedUser(f.repo, "bob", "Bob", domain.RoleManager)
	f.projects.count = 2

	err := f.svc.Delete(context.Background(), "bob")

	var bre *domain.BusinessRuleError
	if !errors.As(err, &bre) || bre.Reason != domain.ReasonUserNotDeletable {
		t.Fatalf("expected BusinessRuleError(%q), got %v", domain.ReasonUserNotDeletable, err)
	}
	if f.repo.saves != 0 {
		t.Error("rejected delete must not write")
	}
	stored := f.repo.byID[bob.ID]
	if stored.IsDeleted || stored.UserName != "bob" {
		t.Errorf("bob must be unchanged: %+v", stored)
	}
	if len(f.identity.deactivated) != 0 {
		t.Error("identity provider must not be called")
	}
}

func TestUserService_Delete_EmployeeWithTasks(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "emp", "Emma", domain.RoleEmployee)
	f.tasks.count = 1

	err := f.svc.Delete(context.Background(), "emp")
	if !errors.Is(err, domain.ErrBusinessRule) {
		t.Fatalf("expected business rule violation, got %v", err)
	}
	if f.projects.calls != 0 || f.tasks.calls != 1 {
		t.Errorf("employee must consult tasks only: projects=%d tasks=%d", f.projects.calls, f.tasks.calls)
	}
}

func TestUserService_Delete_EmployeeWithoutTasks(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "emp", "Emma", domain.RoleEmployee)

	if err := f.svc.Delete(context.Background(), "emp"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserService_Delete_OtherRoleAlwaysAllowed(t *testing.T) {
	for _, role := range []string{domain.RoleAdmin, "Auditor", ""} {
		f := newFixture()
		seedUser(f.repo, "u", "U", role)
		f.projects.count = 5
		f.tasks.count = 5

		if err := f.svc.Delete(context.Background(), "u"); err != nil {
			t.Fatalf("role %q: unexpected error: %v", role, err)
		}
		if f.projects.calls != 0 || f.tasks.calls != 0 {
			t.Errorf("role %q must not consult dependency checkers", role)
		}
	}
}

func TestUserService_Delete_UserNotFound(t *testing.T) {
	f := newFixture()

	err := f.svc.Delete(context.Background(), "ghost")

	var bre *domain.BusinessRuleError
	if !errors.As(err, &bre) || bre.Reason != domain.ReasonUserNotFound {
		t.Fatalf("expected BusinessRuleError(%q), got %v", domain.ReasonUserNotFound, err)
	}
	if f.locker.unlocked != 1 {
		t.Error("lock must be released")
	}
}

func TestUserService_Delete_CheckerErrorPropagates(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "m", "M", domain.RoleManager)
	f.projects.err = errors.New("projects unavailable")

	err := f.svc.Delete(context.Background(), "m")
	if err == nil || errors.Is(err, domain.ErrBusinessRule) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
	if f.repo.saves != 0 {
		t.Error("no write expected")
	}
}

func TestUserService_Delete_IdentityFailureAfterCommit(t *testing.T) {
	f := newFixture()
	seeded := seedUser(f.repo, "gina", "Gina", domain.RoleAdmin)
	f.identity.err = errors.New("timeout")

	err := f.svc.Delete(context.Background(), "gina")
	if !errors.Is(err, domain.ErrIdentitySync) {
		t.Fatalf("expected ErrIdentitySync, got %v", err)
	}
	if errors.Is(err, domain.ErrBusinessRule) || errors.Is(err, domain.ErrUserNotFound) {
		t.Error("sync failure must be distinct from the other error kinds")
	}
	if !f.repo.byID[seeded.ID].IsDeleted {
		t.Error("soft delete must stay committed")
	}
	if len(f.identity.unlockedAtDeactive) != 1 || f.identity.unlockedAtDeactive[0] != 1 {
		t.Errorf("lock must be released before the identity call, unlocked at call=%v", f.identity.unlockedAtDeactive)
	}
}

func TestUserService_Delete_IdentityCalledWithoutLock(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "ivan", "Ivan", domain.RoleAdmin)

	if err := f.svc.Delete(context.Background(), "ivan"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.identity.unlockedAtDeactive) != 1 {
		t.Fatalf("expected one deactivation, got %d", len(f.identity.unlockedAtDeactive))
	}
	if got := f.identity.unlockedAtDeactive[0]; got != 1 {
		t.Fatalf("deactivation ran while the user lock was held (unlocked=%d)", got)
	}
}

func TestUserService_Delete_UsernameReusable(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "henry", "Henry", domain.RoleAdmin)

	if err := f.svc.Delete(context.Background(), "henry"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, err := f.svc.Save(context.Background(), ports.UserPayload{UserName: "henry", Password: "pw"})
	if err != nil {
		t.Fatalf("re-create failed: %v", err)
	}
	found, err := f.svc.FindByUserName(context.Background(), "henry")
	if err != nil || found.ID != got.ID {
		t.Fatalf("expected new henry to resolve, got %+v, %v", found, err)
	}
}

// ---------------------------------------------------------------------------
// Hard delete
// ---------------------------------------------------------------------------

func TestUserService_DeleteByUserName_SkipsEligibility(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "ivan", "Ivan", domain.RoleManager)
	f.projects.count = 3

	if err := f.svc.DeleteByUserName(context.Background(), "ivan"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.repo.purged) != 1 || f.repo.purged[0] != "ivan" {
		t.Errorf("expected purge forwarded, got %v", f.repo.purged)
	}
	if f.projects.calls != 0 {
		t.Error("hard delete must not check eligibility")
	}
	if len(f.identity.deactivated) != 0 {
		t.Error("hard delete must not call the identity provider")
	}
}

// ---------------------------------------------------------------------------
// Audit trail
// ---------------------------------------------------------------------------

func TestUserService_Audit_RecordsLifecycle(t *testing.T) {
	f := newFixture()
	ctx := domain.WithActor(context.Background(), "root")

	created, err := f.svc.Save(ctx, ports.UserPayload{UserName: "jane", Password: "pw", Role: ports.RolePayload{Description: domain.RoleAdmin}})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := f.svc.Update(ctx, ports.UserPayload{UserName: "jane", FirstName: "Jane", Role: ports.RolePayload{Description: domain.RoleAdmin}}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := f.svc.Delete(ctx, "jane"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	want := []domain.UserEventType{domain.UserCreated, domain.UserUpdated, domain.UserSoftDeleted}
	if len(f.audit.events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), f.audit.events)
	}
	for i, e := range f.audit.events {
		if e.Type != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], e.Type)
		}
		if e.UserName != "jane" || e.UserID != created.ID || e.Actor != "root" {
			t.Errorf("event %d: unexpected %+v", i, e)
		}
	}
}

func TestUserService_Audit_NotRecordedOnRejection(t *testing.T) {
	f := newFixture()
	seedUser(f.repo, "kate", "Kate", domain.RoleEmployee)
	f.tasks.count = 1

	_ = f.svc.Delete(context.Background(), "kate")

	if len(f.audit.events) != 0 {
		t.Fatalf("rejected deletion must not be audited, got %+v", f.audit.events)
	}
}

func TestUserService_Audit_FailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.audit.err = errors.New("write concern")

	if _, err := f.svc.Save(context.Background(), ports.UserPayload{UserName: "liam", Password: "pw"}); err != nil {
		t.Fatalf("audit failure must not fail the save: %v", err)
	}
	if err := f.svc.DeleteByUserName(context.Background(), "liam"); err != nil {
		t.Fatalf("audit failure must not fail the purge: %v", err)
	}
}
