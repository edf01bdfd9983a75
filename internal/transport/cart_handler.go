package transport

import (
	"net/http"
	"strconv"

	"hardshop/internal/domain"
	"hardshop/internal/middleware"
	"hardshop/internal/pricing"
	"hardshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateCartRequest represents the cart creation payload
type CreateCartRequest struct {
	Name string `json:"name" validate:"required"`
}

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  *int   `json:"quantity"`
}

// CartItemResponse represents one cart line in API responses
type CartItemResponse struct {
	Product  ProductResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

// CartResponse represents a cart with its items and computed totals
type CartResponse struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Items  []CartItemResponse `json:"items"`
	Totals TotalsResponse     `json:"totals"`
}

// TotalsResponse carries a bill's three roll-up totals
type TotalsResponse struct {
	BaseTotal   decimal.Decimal `json:"base_total"`
	BundleTotal decimal.Decimal `json:"bundle_total"`
	TaxTotal    decimal.Decimal `json:"tax_total"`
}

// BillResponse represents the full charge breakdown for a cart
type BillResponse struct {
	BaseCharges      []pricing.Surcharge `json:"base_charges"`
	BundleSurcharges []pricing.Surcharge `json:"bundle_surcharges"`
	TaxSurcharges    []pricing.Surcharge `json:"tax_surcharges"`
	Totals           TotalsResponse      `json:"totals"`
}

func toCartItemResponses(items []domain.CartItem) []CartItemResponse {
	responses := make([]CartItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, CartItemResponse{
			Product:  toProductResponse(item.Product),
			Quantity: item.Quantity,
		})
	}
	return responses
}

func toTotalsResponse(bill pricing.Bill) TotalsResponse {
	return TotalsResponse{
		BaseTotal:   bill.TotalWithoutSurcharges(),
		BundleTotal: bill.TotalWithoutTaxes(),
		TaxTotal:    bill.TotalWithTaxes(),
	}
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService service.CartService
	policy      pricing.Policy
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, policy pricing.Policy, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		policy:      policy,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/carts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/{cartID}", h.Get)
		r.Delete("/{cartID}", h.Remove)
		r.Get("/{cartID}/items", h.ListItems)
		r.Post("/{cartID}/items", h.AddItem)
		r.Delete("/{cartID}/items/{productID}", h.RemoveItem)
		r.Delete("/{cartID}/items", h.Clear)
		r.Get("/{cartID}/bill", h.Bill)
		r.Post("/{cartID}/checkout", h.Checkout)
	})
}

// Create handles cart creation
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCartRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.cartService.CreateCart(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("Failed to create cart", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Cart created", zap.String("cart_id", cart.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, h.toCartResponse(cart))
}

// Get handles fetching a cart with items and totals
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), cartID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.toCartResponse(cart))
}

// Remove handles deleting a cart after clearing its items
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	if err := h.cartService.RemoveCart(r.Context(), cartID); err != nil {
		h.logger.Error("Failed to remove cart", zap.String("cart_id", cartID.String()), zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Cart removed", zap.String("cart_id", cartID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ListItems handles listing a cart's items
func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	items, err := h.cartService.ListItems(r.Context(), cartID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartItemResponses(items))
}

// AddItem handles adding a product to a cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.cartService.AddItem(r.Context(), cartID, productID, quantity)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartItemResponse{
		Product:  toProductResponse(item.Product),
		Quantity: item.Quantity,
	})
}

// RemoveItem handles removing quantity of a product from a cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	quantity := 1
	if raw := r.URL.Query().Get("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid quantity")
			return
		}
	}

	if err := h.cartService.RemoveItem(r.Context(), cartID, productID, quantity); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles removing all items from a cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(r.Context(), cartID); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Bill handles rendering a cart's bill for display
func (h *CartHandler) Bill(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	bill, err := h.cartService.Bill(r.Context(), cartID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, BillResponse{
		BaseCharges:      bill.BaseCharges,
		BundleSurcharges: bill.BundleSurcharges,
		TaxSurcharges:    bill.TaxSurcharges,
		Totals:           toTotalsResponse(bill),
	})
}

// Checkout handles committing the purchase's stock changes. The cart is
// left as-is; clearing it is a separate call.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	if err := h.cartService.ApplyPurchase(r.Context(), cartID); err != nil {
		h.logger.Error("Checkout failed", zap.String("cart_id", cartID.String()), zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Purchase applied", zap.String("cart_id", cartID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "purchase applied"})
}

func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cartID, err := uuid.Parse(chi.URLParam(r, "cartID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart ID")
		return uuid.Nil, false
	}
	return cartID, true
}

func (h *CartHandler) toCartResponse(cart *domain.Cart) CartResponse {
	bill := pricing.ComputeBill(cart.Items, h.policy)
	return CartResponse{
		ID:     cart.ID.String(),
		Name:   cart.Name,
		Items:  toCartItemResponses(cart.Items),
		Totals: toTotalsResponse(bill),
	}
}
