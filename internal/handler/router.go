package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/piolas-market/internal/middleware"
	"github.com/mmeshcher/piolas-market/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса piolas-market.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/api/products", h.GetProducts)
	r.Get("/api/leaderboard", h.GetLeaderboard)

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/me", h.Me)
			r.Get("/balance", h.GetBalance)

			r.Get("/cart", h.GetCart)
			r.Post("/cart", h.AddToCart)
			r.Delete("/cart/{productID}", h.RemoveFromCart)

			r.Post("/checkout", h.Checkout)
			r.Get("/purchases", h.GetPurchases)
		})
	})

	r.Route("/api/bingo", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Post("/rooms", h.CreateBingoRoom)
		r.Get("/rooms/{code}", h.GetBingoRoom)
		r.Post("/rooms/{code}/join", h.JoinBingoRoom)
		r.Post("/rooms/{code}/draw", h.DrawBingoNumber)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Group(func(r chi.Router) {
			r.Use(h.requireRole(model.RoleAdmin, model.RoleModerator))

			r.Post("/products", h.CreateProduct)
			r.Put("/products/{productID}", h.UpdateProduct)
			r.Delete("/products/{productID}", h.DeleteProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireRole(model.RoleAdmin))

			r.Get("/users", h.ListUsers)
			r.Put("/users/{userID}/role", h.UpdateUserRole)

			r.Get("/channels", h.ListChannels)
			r.Post("/channels", h.CreateChannel)
			r.Put("/channels/{channelID}", h.UpdateChannel)

			r.Post("/balances", h.AdjustBalance)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
