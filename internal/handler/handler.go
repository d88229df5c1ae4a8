// Package handler содержит HTTP-обработчики API сервиса piolas-market.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/piolas-market/internal/middleware"
	"github.com/mmeshcher/piolas-market/internal/model"
	"github.com/mmeshcher/piolas-market/internal/repository"
	"github.com/mmeshcher/piolas-market/internal/service"
	"github.com/mmeshcher/piolas-market/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, password string) (int64, error)
	AuthenticateUser(ctx context.Context, login, password string) (int64, error)
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	GetBalance(ctx context.Context, userID int64) (*model.Balance, error)
	Leaderboard(ctx context.Context, channel string, limit int) ([]model.LeaderboardEntry, error)

	ListProducts(ctx context.Context) ([]model.Product, error)
	GetCart(ctx context.Context, userID int64) ([]model.CartItem, error)
	AddToCart(ctx context.Context, userID int64, item model.CartItem) error
	RemoveFromCart(ctx context.Context, userID, productID int64) error
	Checkout(ctx context.Context, userID int64) (*model.Purchase, error)
	GetPurchasesByUser(ctx context.Context, userID int64) ([]model.Purchase, error)

	CreateProduct(ctx context.Context, p model.Product) (int64, error)
	UpdateProduct(ctx context.Context, p model.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserRole(ctx context.Context, userID int64, role model.Role) error
	ListChannels(ctx context.Context) ([]model.Channel, error)
	CreateChannel(ctx context.Context, c model.Channel) (int64, error)
	UpdateChannel(ctx context.Context, c model.Channel) error
	AdjustBalance(ctx context.Context, userID int64, channel string, pointsDelta, starsDelta int64) error

	CreateBingoRoom(ctx context.Context, hostID int64) (*model.BingoRoom, error)
	JoinBingoRoom(ctx context.Context, code string, userID int64) (*model.BingoBoard, error)
	DrawBingoNumber(ctx context.Context, code string, userID int64) (int64, *model.BingoRoom, error)
	GetBingoRoom(ctx context.Context, code string, userID int64) (*model.BingoRoom, *model.BingoBoard, error)
}

// Handler реализует HTTP-обработчики API сервиса piolas-market.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !validation.IsValidLogin(req.Login) || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("register user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

type userResponse struct {
	ID         int64   `json:"id"`
	Login      string  `json:"login"`
	Role       string  `json:"role"`
	ProfilePic *string `json:"profile_pic,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Login:      u.Login,
		Role:       string(u.Role),
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
}

// Me возвращает профиль текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("get user error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, toUserResponse(*u))
}

// GetBalance возвращает балансы текущего пользователя по каналам.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.logger.Error("get balance error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, balance)
}

// GetLeaderboard возвращает рейтинг по пиолам, при необходимости по одному каналу.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")

	entries, err := h.service.Leaderboard(r.Context(), channel, 100)
	if err != nil {
		h.logger.Error("get leaderboard error", zap.Error(err), zap.String("channel", channel))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(entries) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, entries)
}
