package transport

import (
	"net/http"

	"hardshop/internal/domain"
	"hardshop/internal/middleware"
	"hardshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload. Details
// carries the category-specific attribute bag.
type CreateProductRequest struct {
	Name         string            `json:"name" validate:"required"`
	Category     string            `json:"category" validate:"required"`
	Manufacturer string            `json:"manufacturer"`
	Price        decimal.Decimal   `json:"price"`
	Stock        int               `json:"stock"`
	Details      map[string]string `json:"details"`
}

// UpdatePriceRequest represents the price update payload
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// UpdateStockRequest represents the stock update payload
type UpdateStockRequest struct {
	Stock int `json:"stock"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Manufacturer string          `json:"manufacturer"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Details      domain.Details  `json:"details,omitempty"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Category:     p.Category.String(),
		Manufacturer: p.Manufacturer,
		Price:        p.Price,
		Stock:        p.Stock,
		Details:      p.Details,
	}
}

func toProductResponses(products []*domain.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, toProductResponse(p))
	}
	return responses
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/filter/{category}", h.Filter)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
	r.Route("/api/inventory", func(r chi.Router) {
		r.Post("/items", h.Create)
		r.Put("/items/{id}/price", h.UpdatePrice)
		r.Put("/items/{id}/stock", h.UpdateStock)
	})
}

// List handles listing the whole catalog
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.Search(r.Context(), nil, "")
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponses(products))
}

// Filter handles category + keyword search
func (h *ProductHandler) Filter(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "invalid category")
		return
	}

	keyword := r.URL.Query().Get("keyword")

	products, err := h.catalogService.Search(r.Context(), &category, keyword)
	if err != nil {
		h.logger.Error("Failed to filter products",
			zap.String("category", category.String()),
			zap.Error(err),
		)
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponses(products))
}

// Get handles fetching one product by id
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalogService.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// Create handles adding a new product to the catalog
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product creation validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "invalid category")
		return
	}

	input := service.CreateProductInput{
		Name:         req.Name,
		Category:     category,
		Manufacturer: req.Manufacturer,
		Price:        req.Price,
		Stock:        req.Stock,
	}

	product, err := h.catalogService.Create(r.Context(), input, req.Details)
	if err != nil {
		h.logger.Debug("Product creation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("category", product.Category.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// Delete handles removing a product from the catalog
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	// Resolve first so a missing product reports 404 rather than silently
	// succeeding, matching the read-then-delete contract of the API.
	if _, err := h.catalogService.Get(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	if err := h.catalogService.Remove(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete product", zap.String("product_id", id.String()), zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePrice handles changing a product's price
func (h *ProductHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdatePriceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.UpdatePrice(r.Context(), id, req.Price)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// UpdateStock handles setting a product's stock level
func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdateStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.UpdateStock(r.Context(), id, req.Stock)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}
