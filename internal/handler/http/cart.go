package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tgiffonirs/gomarketplace/internal/cart"
	"github.com/tgiffonirs/gomarketplace/internal/domain"
	"github.com/tgiffonirs/gomarketplace/pkg/httputil"
	"github.com/tgiffonirs/gomarketplace/pkg/validator"
)

// CartHandler exposes the scoped cart store over HTTP.
type CartHandler struct {
	logger *slog.Logger
}

// NewCartHandler creates a cart handler. The store itself is taken from the
// request context; see StoreScope.
func NewCartHandler(logger *slog.Logger) *CartHandler {
	return &CartHandler{logger: logger}
}

// --- DTOs ---

// AddToCartRequest is the body of POST /api/v1/cart/items.
type AddToCartRequest struct {
	ID       string  `json:"id" validate:"required,max=128"`
	Title    string  `json:"title" validate:"required,max=500"`
	ImageURL string  `json:"image_url" validate:"omitempty,max=2048"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// CartResponse is the cart as returned by every cart endpoint.
type CartResponse struct {
	Items     []domain.LineItem `json:"items"`
	LineItems int               `json:"line_items"`
	ItemCount int               `json:"item_count"`
	Subtotal  float64           `json:"subtotal"`
}

func newCartResponse(items domain.Items) CartResponse {
	if items == nil {
		items = domain.Items{}
	}
	return CartResponse{
		Items:     items,
		LineItems: len(items),
		ItemCount: items.ItemCount(),
		Subtotal:  items.Subtotal(),
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, err := cart.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(store.Items())})
}

// AddToCart handles POST /api/v1/cart/items
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	store, err := cart.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var req AddToCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	items, err := store.AddToCart(r.Context(), domain.Product{
		ID:       req.ID,
		Title:    req.Title,
		ImageURL: req.ImageURL,
		Price:    req.Price,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(items)})
}

// Increment handles POST /api/v1/cart/items/{id}/increment
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, (*cart.Store).Increment)
}

// Decrement handles POST /api/v1/cart/items/{id}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, (*cart.Store).Decrement)
}

type adjustFunc func(*cart.Store, context.Context, string) (domain.Items, error)

func (h *CartHandler) adjust(w http.ResponseWriter, r *http.Request, op adjustFunc) {
	store, err := cart.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items, err := op(store, r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(items)})
}
