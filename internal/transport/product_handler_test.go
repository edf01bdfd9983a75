package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hardshop/internal/domain"
	"hardshop/internal/repository"
	"hardshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// mockCatalogService backs handler tests with an in-memory catalog.
type mockCatalogService struct {
	products map[uuid.UUID]*domain.Product
}

func newMockCatalogService() *mockCatalogService {
	return &mockCatalogService{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockCatalogService) Search(ctx context.Context, category *domain.Category, keyword string) ([]*domain.Product, error) {
	results := []*domain.Product{}
	for _, p := range m.products {
		if category != nil && p.Category != *category {
			continue
		}
		results = append(results, p)
	}
	return results, nil
}

func (m *mockCatalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockCatalogService) Create(ctx context.Context, input service.CreateProductInput, details map[string]string) (*domain.Product, error) {
	if input.Price.IsNegative() {
		return nil, &domain.ValidationError{Field: "price", Message: "price must be 0 or greater"}
	}
	detail, err := domain.NewDetails(input.Category)
	if err != nil {
		return nil, err
	}
	product := &domain.Product{
		ID:       uuid.New(),
		Name:     input.Name,
		Category: input.Category,
		Price:    input.Price,
		Stock:    input.Stock,
		Details:  detail,
	}
	m.products[product.ID] = product
	return product, nil
}

func (m *mockCatalogService) Remove(ctx context.Context, id uuid.UUID) error {
	delete(m.products, id)
	return nil
}

func (m *mockCatalogService) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	product.Price = price
	return product, nil
}

func (m *mockCatalogService) UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	product.Stock = stock
	return product, nil
}

// productBody mirrors ProductResponse for decoding: the handler's details
// field is interface-typed, so tests read it back as raw JSON.
type productBody struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Manufacturer string          `json:"manufacturer"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Details      json.RawMessage `json:"details"`
}

func newCatalogRouter(svc service.CatalogService) chi.Router {
	r := chi.NewRouter()
	NewProductHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestProductHandlerCreate(t *testing.T) {
	svc := newMockCatalogService()
	router := newCatalogRouter(svc)

	body, _ := json.Marshal(CreateProductRequest{
		Name:     "Ryzen 7 7800X3D",
		Category: "cpu",
		Price:    decimal.RequireFromString("449.00"),
		Stock:    10,
		Details:  map[string]string{"Cores": "8"},
	})
	req := httptest.NewRequest("POST", "/api/inventory/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	var resp productBody
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Name != "Ryzen 7 7800X3D" || resp.Category != "Cpu" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Details) == 0 {
		t.Error("response is missing the details object")
	}
}

func TestProductHandlerCreateInvalid(t *testing.T) {
	router := newCatalogRouter(newMockCatalogService())

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{
			"missing name",
			map[string]interface{}{"category": "cpu", "price": "10.00"},
			http.StatusBadRequest,
		},
		{
			"unknown category",
			map[string]interface{}{"name": "thing", "category": "flux-capacitor", "price": "10.00"},
			http.StatusUnprocessableEntity,
		},
		{
			"negative price",
			map[string]interface{}{"name": "thing", "category": "cpu", "price": "-1.00"},
			http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/api/inventory/items", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestProductHandlerGet(t *testing.T) {
	svc := newMockCatalogService()
	router := newCatalogRouter(svc)

	product, _ := svc.Create(context.Background(), service.CreateProductInput{
		Name:     "thing",
		Category: domain.CategoryCase,
		Price:    decimal.RequireFromString("10.00"),
	}, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/items/"+product.ID.String(), nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/items/"+uuid.NewString(), nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing product status = %d, want 404", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/items/not-a-uuid", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rr.Code)
	}
}

func TestProductHandlerFilter(t *testing.T) {
	svc := newMockCatalogService()
	router := newCatalogRouter(svc)

	_, _ = svc.Create(context.Background(), service.CreateProductInput{
		Name:     "cpu one",
		Category: domain.CategoryCpu,
		Price:    decimal.RequireFromString("10.00"),
	}, nil)
	_, _ = svc.Create(context.Background(), service.CreateProductInput{
		Name:     "a case",
		Category: domain.CategoryCase,
		Price:    decimal.RequireFromString("10.00"),
	}, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/items/filter/cpu", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var results []productBody
	if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(results) != 1 || results[0].Category != "Cpu" {
		t.Errorf("results = %+v", results)
	}

	// A category outside the closed set is a 404, not an empty list.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/items/filter/gadgets", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown category status = %d, want 404", rr.Code)
	}
}

func TestProductHandlerDelete(t *testing.T) {
	svc := newMockCatalogService()
	router := newCatalogRouter(svc)

	product, _ := svc.Create(context.Background(), service.CreateProductInput{
		Name:     "doomed",
		Category: domain.CategoryStorage,
		Price:    decimal.RequireFromString("10.00"),
	}, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/items/"+product.ID.String(), nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}

	// The API resolves before deleting, so a second delete is a 404.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/items/"+product.ID.String(), nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestProductHandlerUpdatePrice(t *testing.T) {
	svc := newMockCatalogService()
	router := newCatalogRouter(svc)

	product, _ := svc.Create(context.Background(), service.CreateProductInput{
		Name:     "repriced",
		Category: domain.CategoryMemory,
		Price:    decimal.RequireFromString("100.00"),
	}, nil)

	body, _ := json.Marshal(UpdatePriceRequest{Price: decimal.RequireFromString("89.99")})
	req := httptest.NewRequest("PUT", "/api/inventory/items/"+product.ID.String()+"/price", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp productBody
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Price.Equal(decimal.RequireFromString("89.99")) {
		t.Errorf("price = %s, want 89.99", resp.Price)
	}
}
