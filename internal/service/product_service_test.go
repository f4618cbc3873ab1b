package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-platform/internal/cache"
	"github.com/spec-kit/commerce-platform/internal/domain"
	"github.com/spec-kit/commerce-platform/internal/service"
	apperrors "github.com/spec-kit/commerce-platform/pkg/util"
)

// fakeProductRepo mimics the conditional-decrement contract of the SQL
// repository: check and write under one lock.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	getCalls int
	allCalls int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*domain.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product.ID = uuid.NewString()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	product, ok := r.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *product
	return &clone, nil
}

func (r *fakeProductRepo) GetAll(_ context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allCalls++
	var result []domain.Product
	for _, product := range r.products {
		result = append(result, *product)
	}
	return result, nil
}

func (r *fakeProductRepo) GetInStock(_ context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Product
	for _, product := range r.products {
		if product.StockQuantity > 0 {
			result = append(result, *product)
		}
	}
	return result, nil
}

func (r *fakeProductRepo) SearchByName(_ context.Context, _ string) ([]domain.Product, error) {
	return r.GetAll(context.Background())
}

func (r *fakeProductRepo) DecreaseStock(_ context.Context, id string, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok || product.StockQuantity < qty {
		return false, nil
	}
	product.StockQuantity -= qty
	return true, nil
}

func newProductService(repo *fakeProductRepo) *service.ProductService {
	return service.NewProductService(repo, cache.NewMemoryCache(), time.Minute, zap.NewNop())
}

func seedProduct(t *testing.T, repo *fakeProductRepo, name string, price string, stock int) string {
	t.Helper()
	product := &domain.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Category:      "widgets",
	}
	if err := repo.Create(context.Background(), product); err != nil {
		t.Fatal(err)
	}
	return product.ID
}

func TestGetByIDReadsThroughCache(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(repo)
	id := seedProduct(t, repo, "Widget", "9.99", 10)
	ctx := context.Background()

	first, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if first.Name != second.Name || !first.Price.Equal(second.Price) {
		t.Fatalf("reads disagree: %+v vs %+v", first, second)
	}
	if repo.getCalls != 1 {
		t.Fatalf("want 1 store read, got %d", repo.getCalls)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newProductService(newFakeProductRepo())

	_, err := svc.GetByID(context.Background(), "nope")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}

func TestUpdateRefreshesCache(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(repo)
	id := seedProduct(t, repo, "Widget", "9.99", 10)
	ctx := context.Background()

	// warm every key
	if _, err := svc.GetByID(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(ctx, id, &domain.Product{
		Name:          "Widget v2",
		Price:         decimal.RequireFromString("12.50"),
		StockQuantity: 8,
		Category:      "widgets",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Widget v2" {
		t.Fatalf("update not applied: %+v", updated)
	}

	// The id key was refreshed in place: the read must reflect the update
	// without another store round trip.
	getCallsBefore := repo.getCalls
	got, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Widget v2" || !got.Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("stale read after update: %+v", got)
	}
	if repo.getCalls != getCallsBefore {
		t.Fatalf("id key should have been refreshed, store read anyway")
	}

	// The list snapshot was evicted: the next GetAll re-reads the store and
	// must not return the pre-update snapshot.
	allCallsBefore := repo.allCalls
	all, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if repo.allCalls != allCallsBefore+1 {
		t.Fatal("list snapshot should have been evicted")
	}
	if len(all) != 1 || all[0].Name != "Widget v2" {
		t.Fatalf("stale list after update: %+v", all)
	}
}

func TestCreateEvictsListSnapshots(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(repo)
	seedProduct(t, repo, "Widget", "9.99", 10)
	ctx := context.Background()

	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatal(err)
	}

	if err := svc.Create(ctx, &domain.Product{
		Name:          "Gadget",
		Price:         decimal.RequireFromString("4.20"),
		StockQuantity: 3,
	}); err != nil {
		t.Fatal(err)
	}

	all, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("new product missing from list: %+v", all)
	}
}

func TestDeleteEvictsEveryKey(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(repo)
	id := seedProduct(t, repo, "Widget", "9.99", 10)
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}

	_, err := svc.GetByID(ctx, id)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("want NOT_FOUND after delete, got %v", err)
	}
}

func TestDecreaseStockRejectsWithoutMutation(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(repo)
	id := seedProduct(t, repo, "Widget", "9.99", 5)
	ctx := context.Background()

	applied, err := svc.DecreaseStock(ctx, id, 6)
	if err != nil {
		t.Fatal(err)
	}
	if applied {
		t.Fatal("decrement should have been rejected")
	}

	got, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.StockQuantity != 5 {
		t.Fatalf("stock mutated on rejected decrement: %d", got.StockQuantity)
	}
}

func TestDecreaseStockUnknownProduct(t *testing.T) {
	svc := newProductService(newFakeProductRepo())

	_, err := svc.DecreaseStock(context.Background(), "nope", 1)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}

func TestDecreaseStockInvalidatesCache(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(repo)
	id := seedProduct(t, repo, "Widget", "9.99", 10)
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, id); err != nil {
		t.Fatal(err)
	}

	applied, err := svc.DecreaseStock(ctx, id, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Fatal("decrement should have applied")
	}

	got, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.StockQuantity != 7 {
		t.Fatalf("stale stock after decrement: %d", got.StockQuantity)
	}
}

func TestConcurrentDecrementsDrainToZero(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(repo)
	id := seedProduct(t, repo, "Widget", "9.99", 10)
	ctx := context.Background()

	const workers = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := svc.DecreaseStock(ctx, id, 1)
			if err != nil {
				t.Error(err)
				return
			}
			if applied {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("want exactly 10 successful decrements, got %d", succeeded)
	}
	got, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.StockQuantity != 0 {
		t.Fatalf("want stock drained to 0, got %d", got.StockQuantity)
	}
}
