package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/piolas-market/internal/middleware"
	"github.com/mmeshcher/piolas-market/internal/model"
	"github.com/mmeshcher/piolas-market/internal/repository"
	"github.com/mmeshcher/piolas-market/internal/service"
)

// stubService возвращает заранее заданные значения вместо бизнес-логики.
type stubService struct {
	registerID  int64
	registerErr error
	authID      int64
	authErr     error
	user        *model.User
	balance     *model.Balance
	leaderboard []model.LeaderboardEntry

	products    []model.Product
	cart        []model.CartItem
	addCartErr  error
	purchase    *model.Purchase
	checkoutErr error
	purchases   []model.Purchase

	room  *model.BingoRoom
	board *model.BingoBoard
}

func (s *stubService) RegisterUser(context.Context, string, string) (int64, error) {
	return s.registerID, s.registerErr
}

func (s *stubService) AuthenticateUser(context.Context, string, string) (int64, error) {
	return s.authID, s.authErr
}

func (s *stubService) GetUser(context.Context, int64) (*model.User, error) {
	if s.user == nil {
		return nil, repository.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubService) GetBalance(context.Context, int64) (*model.Balance, error) {
	return s.balance, nil
}

func (s *stubService) Leaderboard(context.Context, string, int) ([]model.LeaderboardEntry, error) {
	return s.leaderboard, nil
}

func (s *stubService) ListProducts(context.Context) ([]model.Product, error) {
	return s.products, nil
}

func (s *stubService) GetCart(context.Context, int64) ([]model.CartItem, error) {
	return s.cart, nil
}

func (s *stubService) AddToCart(context.Context, int64, model.CartItem) error {
	return s.addCartErr
}

func (s *stubService) RemoveFromCart(context.Context, int64, int64) error { return nil }

func (s *stubService) Checkout(context.Context, int64) (*model.Purchase, error) {
	return s.purchase, s.checkoutErr
}

func (s *stubService) GetPurchasesByUser(context.Context, int64) ([]model.Purchase, error) {
	return s.purchases, nil
}

func (s *stubService) CreateProduct(context.Context, model.Product) (int64, error) { return 1, nil }
func (s *stubService) UpdateProduct(context.Context, model.Product) error          { return nil }
func (s *stubService) DeleteProduct(context.Context, int64) error                  { return nil }

func (s *stubService) ListUsers(context.Context) ([]model.User, error) { return nil, nil }
func (s *stubService) UpdateUserRole(context.Context, int64, model.Role) error {
	return nil
}

func (s *stubService) ListChannels(context.Context) ([]model.Channel, error) { return nil, nil }
func (s *stubService) CreateChannel(context.Context, model.Channel) (int64, error) {
	return 1, nil
}
func (s *stubService) UpdateChannel(context.Context, model.Channel) error { return nil }
func (s *stubService) AdjustBalance(context.Context, int64, string, int64, int64) error {
	return nil
}

func (s *stubService) CreateBingoRoom(context.Context, int64) (*model.BingoRoom, error) {
	return s.room, nil
}

func (s *stubService) JoinBingoRoom(context.Context, string, int64) (*model.BingoBoard, error) {
	if s.room == nil {
		return nil, repository.ErrRoomNotFound
	}
	return s.board, nil
}

func (s *stubService) DrawBingoNumber(context.Context, string, int64) (int64, *model.BingoRoom, error) {
	return 42, s.room, nil
}

func (s *stubService) GetBingoRoom(context.Context, string, int64) (*model.BingoRoom, *model.BingoBoard, error) {
	if s.room == nil {
		return nil, nil, repository.ErrRoomNotFound
	}
	return s.room, s.board, nil
}

func newTestRouter(svc Service) (http.Handler, *middleware.AuthMiddleware) {
	auth := middleware.NewAuthMiddleware("test-secret")
	h := NewHandler(svc, zap.NewNop(), auth)
	return h.SetupRouter(), auth
}

func authCookie(auth *middleware.AuthMiddleware, userID int64) *http.Cookie {
	rec := httptest.NewRecorder()
	auth.SetAuthCookie(rec, userID)
	return rec.Result().Cookies()[0]
}

func TestRegister(t *testing.T) {
	router, _ := newTestRouter(&stubService{registerID: 1})

	body := bytes.NewBufferString(`{"login":"viewer","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected auth cookie to be set")
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		svc  *stubService
		want int
	}{
		{"invalid login", `{"login":"a!","password":"secret"}`, &stubService{}, http.StatusBadRequest},
		{"empty password", `{"login":"viewer","password":""}`, &stubService{}, http.StatusBadRequest},
		{"malformed json", `{`, &stubService{}, http.StatusBadRequest},
		{"duplicate login", `{"login":"viewer","password":"secret"}`, &stubService{registerErr: repository.ErrUserExists}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _ := newTestRouter(&stubService{authErr: service.ErrInvalidCredentials})

	body := bytes.NewBufferString(`{"login":"viewer","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/user/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	router, _ := newTestRouter(&stubService{})

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/user/me"},
		{http.MethodGet, "/api/user/balance"},
		{http.MethodGet, "/api/user/cart"},
		{http.MethodPost, "/api/user/checkout"},
		{http.MethodPost, "/api/bingo/rooms"},
		{http.MethodGet, "/api/admin/users"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without cookie, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestGetLeaderboardNoContent(t *testing.T) {
	router, _ := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for empty leaderboard, got %d", rec.Code)
	}
}

func TestGetProducts(t *testing.T) {
	router, _ := newTestRouter(&stubService{products: []model.Product{
		{ID: 1, Name: "sticker"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var resp []productResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Name != "sticker" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAddToCart(t *testing.T) {
	tests := []struct {
		name string
		body string
		svc  *stubService
		want int
	}{
		{"ok", `{"product_id":1,"quantity":2}`, &stubService{}, http.StatusOK},
		{"zero quantity", `{"product_id":1,"quantity":0}`, &stubService{}, http.StatusBadRequest},
		{"unknown product", `{"product_id":99,"quantity":1}`, &stubService{addCartErr: repository.ErrProductNotFound}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := newTestRouter(tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/api/user/cart", bytes.NewBufferString(tt.body))
			req.AddCookie(authCookie(auth, 1))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestCheckoutStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			"empty cart",
			&service.SettlementError{Stage: model.PurchaseStatusValidating, Err: service.ErrEmptyCart},
			http.StatusBadRequest,
		},
		{
			"overflowing cart",
			&service.SettlementError{Stage: model.PurchaseStatusValidating, Err: service.ErrCartOverflow},
			http.StatusBadRequest,
		},
		{
			"unknown product",
			&service.SettlementError{Stage: model.PurchaseStatusValidating, Err: repository.ErrProductNotFound},
			http.StatusUnprocessableEntity,
		},
		{
			"insufficient stock",
			&service.SettlementError{Stage: model.PurchaseStatusValidating, Err: service.ErrInsufficientStock},
			http.StatusConflict,
		},
		{
			"insufficient funds",
			&service.SettlementError{
				Stage: model.PurchaseStatusDeducting,
				Err:   &service.InsufficientFundsError{Currency: "points", Shortfall: 50},
			},
			http.StatusPaymentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := newTestRouter(&stubService{checkoutErr: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/api/user/checkout", nil)
			req.AddCookie(authCookie(auth, 1))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestCheckoutSuccess(t *testing.T) {
	purchase := &model.Purchase{
		ID:          uuid.New(),
		UserID:      1,
		Items:       []model.PurchaseItem{{ProductID: 1, Name: "sticker", Quantity: 2}},
		TotalPoints: 20,
	}
	router, auth := newTestRouter(&stubService{purchase: purchase})

	req := httptest.NewRequest(http.MethodPost, "/api/user/checkout", nil)
	req.AddCookie(authCookie(auth, 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp purchaseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != purchase.ID.String() {
		t.Errorf("expected purchase id %s, got %s", purchase.ID, resp.ID)
	}
	if resp.TotalPoints != 20 {
		t.Errorf("expected total 20 points, got %d", resp.TotalPoints)
	}
}

func TestAdminRequiresRole(t *testing.T) {
	tests := []struct {
		name string
		role model.Role
		path string
		want int
	}{
		{"user blocked from admin", model.RoleUser, "/api/admin/users", http.StatusForbidden},
		{"moderator blocked from user management", model.RoleModerator, "/api/admin/users", http.StatusForbidden},
		{"admin allowed", model.RoleAdmin, "/api/admin/users", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{user: &model.User{ID: 1, Login: "someone", Role: tt.role}}
			router, auth := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.AddCookie(authCookie(auth, 1))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestCreateBingoRoom(t *testing.T) {
	room := &model.BingoRoom{ID: 1, Code: "ABC234", HostID: 1, Status: model.RoomStatusOpen}
	router, auth := newTestRouter(&stubService{room: room})

	req := httptest.NewRequest(http.MethodPost, "/api/bingo/rooms", nil)
	req.AddCookie(authCookie(auth, 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp bingoRoomResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "ABC234" {
		t.Errorf("expected room code ABC234, got %s", resp.Code)
	}
}

func TestBingoRoomNotFound(t *testing.T) {
	router, auth := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/bingo/rooms/NOPE42", nil)
	req.AddCookie(authCookie(auth, 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
