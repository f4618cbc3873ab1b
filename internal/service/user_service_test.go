package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/commerce-platform/internal/domain"
	"github.com/spec-kit/commerce-platform/internal/service"
	apperrors "github.com/spec-kit/commerce-platform/pkg/util"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[username]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func TestRegisterAndValidate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo, bcrypt.MinCost, zap.NewNop())
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("want USER role, got %s", user.Role)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatal("password stored in plaintext")
	}

	validated, err := svc.Validate(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if validated.Username != "alice" {
		t.Fatalf("unexpected user: %+v", validated)
	}
}

func TestRegisterConflicts(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo, bcrypt.MinCost, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Register(ctx, "alice", "other@example.com", "pw")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("want CONFLICT on duplicate username, got %v", err)
	}

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "pw")
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("want CONFLICT on duplicate email, got %v", err)
	}
}

func TestValidateRejectsBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo, bcrypt.MinCost, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret"); err != nil {
		t.Fatal(err)
	}

	var domainErr *apperrors.DomainError

	_, err := svc.Validate(ctx, "alice", "wrong")
	if !errors.As(err, &domainErr) || domainErr.Code != "UNAUTHORIZED" {
		t.Fatalf("want UNAUTHORIZED for wrong password, got %v", err)
	}

	// Unknown user and wrong password are indistinguishable to the caller.
	_, err = svc.Validate(ctx, "nobody", "s3cret")
	if !errors.As(err, &domainErr) || domainErr.Code != "UNAUTHORIZED" {
		t.Fatalf("want UNAUTHORIZED for unknown user, got %v", err)
	}
}

func TestFindByUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo, bcrypt.MinCost, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.FindByUsername(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.FindByUsername(ctx, "nobody")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}
