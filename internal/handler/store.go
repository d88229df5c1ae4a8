package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/piolas-market/internal/middleware"
	"github.com/mmeshcher/piolas-market/internal/model"
	"github.com/mmeshcher/piolas-market/internal/repository"
	"github.com/mmeshcher/piolas-market/internal/service"
)

type productResponse struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Quantity      *int64   `json:"quantity,omitempty"`
	PriceCurrency *float64 `json:"price_currency,omitempty"`
	PricePoints   *int64   `json:"price_points,omitempty"`
	PriceStars    *int64   `json:"price_stars,omitempty"`
}

func toProductResponse(p model.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		PricePoints: p.PricePoints,
		PriceStars:  p.PriceStars,
	}
	if p.PriceCurrency != nil {
		v := p.PriceCurrency.InexactFloat64()
		resp.PriceCurrency = &v
	}
	return resp
}

// GetProducts возвращает каталог товаров.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("list products error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}

	h.writeJSON(w, resp)
}

// GetCart возвращает корзину текущего пользователя.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	items, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("get cart error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if items == nil {
		items = []model.CartItem{}
	}
	h.writeJSON(w, items)
}

// AddToCart добавляет позицию в корзину текущего пользователя.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var item model.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if item.Quantity <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.AddToCart(r.Context(), userID, item); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("add to cart error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// RemoveFromCart удаляет позицию из корзины текущего пользователя.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveFromCart(r.Context(), userID, productID); err != nil {
		h.logger.Error("remove from cart error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type purchaseResponse struct {
	ID            string               `json:"id"`
	Items         []model.PurchaseItem `json:"items"`
	TotalPoints   int64                `json:"total_points"`
	TotalStars    int64                `json:"total_stars"`
	TotalCurrency float64              `json:"total_currency"`
	CreatedAt     string               `json:"created_at"`
}

func toPurchaseResponse(p model.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:            p.ID.String(),
		Items:         p.Items,
		TotalPoints:   p.TotalPoints,
		TotalStars:    p.TotalStars,
		TotalCurrency: p.TotalCurrency.InexactFloat64(),
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

// Checkout оформляет покупку содержимого корзины текущего пользователя.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	purchase, err := h.service.Checkout(r.Context(), userID)
	if err != nil {
		var fundsErr *service.InsufficientFundsError
		switch {
		case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrCartOverflow):
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		case errors.Is(err, repository.ErrProductNotFound):
			http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		case errors.Is(err, service.ErrInsufficientStock):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.As(err, &fundsErr):
			http.Error(w, fundsErr.Error(), http.StatusPaymentRequired)
		default:
			h.logger.Error("checkout error", zap.Error(err), zap.Int64("userID", userID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, toPurchaseResponse(*purchase))
}

// GetPurchases возвращает историю покупок текущего пользователя.
func (h *Handler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	purchases, err := h.service.GetPurchasesByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("get purchases error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(purchases) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		resp = append(resp, toPurchaseResponse(p))
	}

	h.writeJSON(w, resp)
}

type productRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Quantity      *int64   `json:"quantity"`
	PriceCurrency *float64 `json:"price_currency"`
	PricePoints   *int64   `json:"price_points"`
	PriceStars    *int64   `json:"price_stars"`
}

func (req productRequest) toModel() model.Product {
	p := model.Product{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		PricePoints: req.PricePoints,
		PriceStars:  req.PriceStars,
	}
	if req.PriceCurrency != nil {
		v := decimal.NewFromFloat(*req.PriceCurrency)
		p.PriceCurrency = &v
	}
	return p
}
