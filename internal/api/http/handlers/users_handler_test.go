package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	transport "github.com/spec-kit/commerce-platform/internal/api/http"
	"github.com/spec-kit/commerce-platform/internal/api/http/handlers"
	"github.com/spec-kit/commerce-platform/internal/auth"
	"github.com/spec-kit/commerce-platform/internal/domain"
	"github.com/spec-kit/commerce-platform/internal/observability"
	"github.com/spec-kit/commerce-platform/internal/service"
)

type memUserRepo struct {
	users map[string]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := r.users[username]
	return ok, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func newUserApp(t *testing.T) *fiber.App {
	t.Helper()
	repo := &memUserRepo{users: make(map[string]*domain.User)}
	svc := service.NewUserService(repo, bcrypt.MinCost, zap.NewNop())

	app := fiber.New()
	transport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	transport.RegisterUserRoutes(app, transport.UserRouteConfig{
		Health: handlers.NewHealthHandler("user-service", "test", nil, nil),
		Users:  handlers.NewUsersHandler(svc),
	})
	return app
}

func TestRegisterValidateRoundTrip(t *testing.T) {
	app := newUserApp(t)

	resp := postJSON(t, app, "/users/register", `{"username":"alice","email":"a@b.c","password":"pw"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: want 201, got %d", resp.StatusCode)
	}
	var created domain.User
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Role != domain.RoleUser {
		t.Fatalf("want USER, got %s", created.Role)
	}

	resp = postJSON(t, app, "/users/register", `{"username":"alice","email":"x@y.z","password":"pw"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate username: want 409, got %d", resp.StatusCode)
	}

	resp = postJSON(t, app, "/users/validate", `{"username":"alice","password":"pw"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("validate: want 200, got %d", resp.StatusCode)
	}

	resp = postJSON(t, app, "/users/validate", `{"username":"alice","password":"nope"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: want 401, got %d", resp.StatusCode)
	}
}

func TestGetUserOwnership(t *testing.T) {
	app := newUserApp(t)
	postJSON(t, app, "/users/register", `{"username":"alice","email":"a@b.c","password":"pw"}`)
	postJSON(t, app, "/users/register", `{"username":"bob","email":"b@b.c","password":"pw"}`)

	get := func(target, asUser string, asRole domain.Role) *http.Response {
		req := newRequest(t, http.MethodGet, "/users/"+target)
		if asUser != "" {
			req.Header.Set(auth.HeaderUserName, asUser)
			req.Header.Set(auth.HeaderUserRole, string(asRole))
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	if resp := get("alice", "alice", domain.RoleUser); resp.StatusCode != http.StatusOK {
		t.Fatalf("own record: want 200, got %d", resp.StatusCode)
	}
	if resp := get("bob", "alice", domain.RoleUser); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("other user's record: want 404, got %d", resp.StatusCode)
	}
	if resp := get("bob", "alice", domain.RoleAdmin); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin read: want 200, got %d", resp.StatusCode)
	}
}
