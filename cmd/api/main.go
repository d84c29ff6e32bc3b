package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lststech/agenda-backend/internal/api/router"
	"github.com/lststech/agenda-backend/internal/availability"
	"github.com/lststech/agenda-backend/internal/booking"
	"github.com/lststech/agenda-backend/internal/calendar"
	"github.com/lststech/agenda-backend/internal/catalog"
	appconfig "github.com/lststech/agenda-backend/internal/config"
	"github.com/lststech/agenda-backend/internal/hold"
	"github.com/lststech/agenda-backend/internal/http/handlers"
	"github.com/lststech/agenda-backend/internal/notify"
	"github.com/lststech/agenda-backend/internal/observability/metrics"
	"github.com/lststech/agenda-backend/internal/payments"
	"github.com/lststech/agenda-backend/pkg/logging"
)

func main() {
	// Load .env in development; production injects real env vars
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting agenda-backend API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()

	slotCfg, err := availability.NewConfig(cfg.DayStartHour, cfg.DayEndHour, cfg.SlotDurationMinutes, loc)
	if err != nil {
		logger.Error("invalid booking window", "error", err)
		os.Exit(1)
	}

	serviceCatalog, err := catalog.New(cfg.ServicePricesJSON, cfg.USDToCOPRate)
	if err != nil {
		logger.Error("invalid service price table", "error", err)
		os.Exit(1)
	}

	// Google Calendar is both the busy-interval source and the event sink
	creds, err := cfg.GoogleCredentialsJSON()
	if err != nil {
		logger.Error("failed to assemble Google credentials", "error", err)
		os.Exit(1)
	}
	calendarSvc, err := calendar.NewService(context.Background(), creds, loc, logger)
	if err != nil {
		logger.Error("failed to initialize Google Calendar client", "error", err)
		os.Exit(1)
	}

	// Payments are optional: without an access token only free services book
	var charger payments.Charger
	if cfg.MercadoPagoAccessToken != "" {
		mp, err := payments.NewMercadoPagoCharger(cfg.MercadoPagoAccessToken, logger)
		if err != nil {
			logger.Error("failed to initialize MercadoPago client", "error", err)
			os.Exit(1)
		}
		charger = mp
	} else {
		logger.Warn("MERCADOPAGO_ACCESS_TOKEN not set, paid services will fail to book")
	}

	// Confirmation email, stubbed when SendGrid is not configured
	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else {
		logger.Warn("SENDGRID_API_KEY not set, confirmation emails will be logged only")
		sender = notify.NewStubEmailSender(logger)
	}
	mailer := notify.NewConfirmationMailer(sender, logger)

	// Redis-backed slot holds; without Redis concurrent bookings race to
	// the calendar instead
	var holds booking.HoldStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		holds = hold.NewStore(redisClient, cfg.HoldTTL)
	} else {
		logger.Warn("REDIS_ADDR not set, slot holds disabled")
	}

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	bookingSvc, err := booking.NewService(booking.Options{
		SlotConfig:      slotCfg,
		BookingDuration: time.Duration(cfg.BookingDurationMinutes) * time.Minute,
		CalendarID:      cfg.CalendarID,
		OrganizerName:   cfg.OrganizerName,
		OrganizerEmail:  cfg.OrganizerEmail,
		Busy:            calendarSvc,
		Events:          calendarSvc,
		Charger:         charger,
		Mailer:          mailer,
		Holds:           holds,
		Catalog:         serviceCatalog,
		Metrics:         bookingMetrics,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to initialize booking service", "error", err)
		os.Exit(1)
	}

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		Availability:       handlers.NewAvailabilityHandler(bookingSvc, loc, logger),
		Bookings:           handlers.NewBookingsHandler(bookingSvc, loc, logger),
		Services:           handlers.NewServicesHandler(serviceCatalog),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BookingRateLimit:   1,
		BookingRateBurst:   5,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}
