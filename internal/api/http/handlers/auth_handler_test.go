package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	transport "github.com/spec-kit/commerce-platform/internal/api/http"
	"github.com/spec-kit/commerce-platform/internal/api/http/handlers"
	"github.com/spec-kit/commerce-platform/internal/auth"
	"github.com/spec-kit/commerce-platform/internal/config"
	"github.com/spec-kit/commerce-platform/internal/domain"
	"github.com/spec-kit/commerce-platform/internal/gateway"
	"github.com/spec-kit/commerce-platform/internal/observability"
)

type fakeCredentialGateway struct {
	user           *domain.User
	validateErr    error
	registerStatus int
	registerBody   []byte
	registerErr    error
}

func (g *fakeCredentialGateway) Validate(context.Context, string, string) (*domain.User, error) {
	if g.validateErr != nil {
		return nil, g.validateErr
	}
	return g.user, nil
}

func (g *fakeCredentialGateway) Register(context.Context, []byte) (int, []byte, error) {
	if g.registerErr != nil {
		return 0, nil, g.registerErr
	}
	return g.registerStatus, g.registerBody, nil
}

func newGatewayApp(t *testing.T, users *fakeCredentialGateway) (*fiber.App, *auth.TokenManager) {
	t.Helper()
	app := fiber.New()
	transport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	tokens := auth.NewTokenManager("test-secret", 60)
	issuer := gateway.NewTokenIssuer(config.IssuerModeLocal, tokens, users, zap.NewNop())
	transport.RegisterGatewayRoutes(app, transport.GatewayRouteConfig{
		Health:         handlers.NewHealthHandler("api-gateway", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(issuer, users),
		AuthMiddleware: auth.NewMiddleware(tokens, zap.NewNop()),
		Targets: config.GatewayConfig{
			ProductServiceURL: "http://127.0.0.1:1",
			OrderServiceURL:   "http://127.0.0.1:1",
			UserServiceURL:    "http://127.0.0.1:1",
		},
	})
	return app, tokens
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestIssueTokenSuccess(t *testing.T) {
	app, tokens := newGatewayApp(t, &fakeCredentialGateway{})

	resp := postJSON(t, app, "/auth/token", `{"username":"admin","password":"admin"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	var body struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Role     string `json:"role"`
		Type     string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Type != "Bearer" || body.Username != "admin" || body.Role != string(domain.RoleAdmin) {
		t.Fatalf("unexpected payload: %+v", body)
	}

	identity, err := tokens.Validate(body.Token)
	if err != nil {
		t.Fatal(err)
	}
	if identity.Username != "admin" {
		t.Fatalf("token does not carry issued identity: %+v", identity)
	}
}

func TestIssueTokenRejections(t *testing.T) {
	app, _ := newGatewayApp(t, &fakeCredentialGateway{})

	resp := postJSON(t, app, "/auth/token", `{"username":"admin","password":"wrong"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad credentials: want 401, got %d", resp.StatusCode)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("want UNAUTHORIZED, got %q", body.Error.Code)
	}

	resp = postJSON(t, app, "/auth/token", `{"username":"admin"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing password: want 400, got %d", resp.StatusCode)
	}

	resp = postJSON(t, app, "/auth/token", `not-json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body: want 400, got %d", resp.StatusCode)
	}
}

func TestRegisterForwardsStatusAndBody(t *testing.T) {
	upstream := []byte(`{"username":"alice","role":"USER"}`)
	app, _ := newGatewayApp(t, &fakeCredentialGateway{
		registerStatus: http.StatusCreated,
		registerBody:   upstream,
	})

	resp := postJSON(t, app, "/auth/register", `{"username":"alice","email":"a@b.c","password":"pw"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, upstream) {
		t.Fatalf("body not forwarded verbatim: %s", body)
	}
}

func TestProxiedRoutesRequireToken(t *testing.T) {
	app, tokens := newGatewayApp(t, &fakeCredentialGateway{})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: want 401, got %d", resp.StatusCode)
	}

	// A valid token passes the filter; the unreachable backend then surfaces
	// as upstream unavailability rather than a token problem.
	token, _, err := tokens.Issue("admin", domain.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("dead backend: want 503, got %d", resp.StatusCode)
	}
}
