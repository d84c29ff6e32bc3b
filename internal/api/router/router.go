package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lststech/agenda-backend/internal/http/handlers"
	httpmiddleware "github.com/lststech/agenda-backend/internal/http/middleware"
	"github.com/lststech/agenda-backend/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Availability       *handlers.AvailabilityHandler
	Bookings           *handlers.BookingsHandler
	Services           *handlers.ServicesHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests per second allowed on the booking endpoint, per client IP.
	// Zero disables rate limiting.
	BookingRateLimit float64
	BookingRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.Availability != nil {
			api.Get("/availability", cfg.Availability.GetSlots)
		}
		if cfg.Services != nil {
			api.Get("/services", cfg.Services.ListServices)
		}
		if cfg.Bookings != nil {
			create := api.With()
			if cfg.BookingRateLimit > 0 {
				create = api.With(httpmiddleware.RateLimit(cfg.BookingRateLimit, cfg.BookingRateBurst))
			}
			create.Post("/bookings", cfg.Bookings.CreateBooking)
		}
	})

	return r
}
