// Package client holds the HTTP clients the services use to call each other.
// Every call carries a bounded timeout; a timeout or connection failure is
// reported as UPSTREAM_UNAVAILABLE, distinct from not-found and stock errors.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/commerce-platform/internal/domain"
	apperrors "github.com/spec-kit/commerce-platform/pkg/util"
)

// ProductGateway is the order workflow's view of the product subsystem.
type ProductGateway interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	DecreaseStock(ctx context.Context, id string, quantity int) error
}

// ProductClient talks to the product service over HTTP.
type ProductClient struct {
	baseURL string
	http    *http.Client
}

// NewProductClient builds a client with a bounded per-call timeout.
func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// GetProduct fetches a product snapshot.
func (c *ProductClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	url := fmt.Sprintf("%s/products/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable("product service", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.NewUpstreamUnavailable("product service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var product domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, apperrors.NewUpstreamUnavailable("product service", err)
	}
	return &product, nil
}

// DecreaseStock issues the conditional decrement call. A 409 means the
// condition failed on the product side (stock race); transport failures map
// to UPSTREAM_UNAVAILABLE.
func (c *ProductClient) DecreaseStock(ctx context.Context, id string, quantity int) error {
	url := fmt.Sprintf("%s/products/%s/stock?quantity=%d", c.baseURL, id, quantity)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewUpstreamUnavailable("product service", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return apperrors.NewConflict("stock decrement rejected", map[string]any{"id": id, "quantity": quantity})
	case http.StatusNotFound:
		return apperrors.NewNotFound("product", map[string]any{"id": id})
	default:
		return apperrors.NewUpstreamUnavailable("product service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}
