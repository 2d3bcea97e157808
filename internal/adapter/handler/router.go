package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/rl1809/bookstore/internal/adapter/middleware"
	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/metrics"
)

type RouterOptions struct {
	Logger         zerolog.Logger
	AllowedOrigins []string

	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
}

// NewRouter builds the HTTP router of the bookstore API.
func NewRouter(h *HTTPHandler, auth *middleware.Authenticator, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(metrics.InstrumentHandler)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         3600,
	}).Handler)
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Handler)
	}

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/usuarios", h.ListUsers)
	r.Post("/usuarios", h.CreateUser)
	r.Post("/login", h.Login)

	r.Get("/libros", h.ListBooks)
	r.Post("/libros", h.CreateBook)
	r.Get("/libros/{id}", h.GetBook)

	r.Post("/categorias", h.CreateCategory)

	r.Route("/carrito", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{userId}", h.GetCart)
		r.Post("/add", h.AddToCart)
		r.Post("/checkout", h.Checkout)
	})

	// Protected endpoints
	r.With(auth.Handler).Get("/profile", h.Profile)
	r.With(auth.Handler, middleware.RequireRole(domain.RoleAdmin)).Get("/admin/usuarios", h.AdminListUsers)

	return r
}
