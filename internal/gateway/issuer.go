// Package gateway holds the edge-specific pieces: token issuance strategies
// selected by configuration, both exposing the same contract.
package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-platform/internal/auth"
	"github.com/spec-kit/commerce-platform/internal/client"
	"github.com/spec-kit/commerce-platform/internal/config"
	"github.com/spec-kit/commerce-platform/internal/domain"
	apperrors "github.com/spec-kit/commerce-platform/pkg/util"
)

// IssuedToken is the successful issuance result.
type IssuedToken struct {
	Token    string
	Username string
	Role     domain.Role
}

// TokenIssuer mints a token for submitted credentials. Both implementations
// share one failure taxonomy: bad credentials are unauthorized, transport
// problems are upstream unavailability.
type TokenIssuer interface {
	IssueToken(ctx context.Context, username, password string, requestedRole domain.Role) (*IssuedToken, error)
}

// NewTokenIssuer selects the issuance strategy from configuration.
func NewTokenIssuer(mode config.IssuerMode, tokens *auth.TokenManager, users client.CredentialGateway, logger *zap.Logger) TokenIssuer {
	if mode == config.IssuerModeDelegated {
		return &delegatedIssuer{tokens: tokens, users: users, logger: logger}
	}
	return &localIssuer{tokens: tokens, logger: logger}
}

// localIssuer validates against a built-in bootstrap credential table. It
// exists for bootstrap and testing, before a credential store is deployed.
type localIssuer struct {
	tokens *auth.TokenManager
	logger *zap.Logger
}

var bootstrapCredentials = map[string]string{
	"admin":    "admin",
	"user":     "user",
	"testuser": "test123",
}

func (i *localIssuer) IssueToken(_ context.Context, username, password string, requestedRole domain.Role) (*IssuedToken, error) {
	expected, ok := bootstrapCredentials[username]
	if !ok || expected != password {
		i.logger.Warn("local issuance rejected", zap.String("username", username))
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	role := domain.RoleUser
	if domain.ValidRole(requestedRole) {
		role = requestedRole
	}
	if username == "admin" {
		role = domain.RoleAdmin
	}

	token, _, err := i.tokens.Issue(username, role)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: token, Username: username, Role: role}, nil
}

// delegatedIssuer forwards credentials to the credential store and mints a
// token from its response.
type delegatedIssuer struct {
	tokens *auth.TokenManager
	users  client.CredentialGateway
	logger *zap.Logger
}

func (i *delegatedIssuer) IssueToken(ctx context.Context, username, password string, _ domain.Role) (*IssuedToken, error) {
	user, err := i.users.Validate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	role := user.Role
	if !domain.ValidRole(role) {
		role = domain.RoleUser
	}

	token, _, err := i.tokens.Issue(user.Username, role)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: token, Username: user.Username, Role: role}, nil
}
