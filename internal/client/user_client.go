package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spec-kit/commerce-platform/internal/domain"
	apperrors "github.com/spec-kit/commerce-platform/pkg/util"
)

// CredentialGateway is the gateway's view of the credential store.
type CredentialGateway interface {
	Validate(ctx context.Context, username, password string) (*domain.User, error)
	Register(ctx context.Context, body []byte) (int, []byte, error)
}

// UserClient talks to the user service over HTTP.
type UserClient struct {
	baseURL string
	http    *http.Client
}

// NewUserClient builds a client with a bounded per-call timeout.
func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Validate checks a username/password pair against the credential store.
func (c *UserClient) Validate(ctx context.Context, username, password string) (*domain.User, error) {
	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/validate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable("user service", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.NewUnauthorized("invalid credentials")
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.NewUpstreamUnavailable("user service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, apperrors.NewUpstreamUnavailable("user service", err)
	}
	return &user, nil
}

// Register forwards a registration payload and returns the upstream status
// code and body verbatim so the gateway can propagate both.
func (c *UserClient) Register(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/register", bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, apperrors.NewUpstreamUnavailable("user service", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, apperrors.NewUpstreamUnavailable("user service", err)
	}
	return resp.StatusCode, respBody, nil
}

