package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digicompanions_site_go/config"
	"digicompanions_site_go/handlers"
	"digicompanions_site_go/logger"
	"digicompanions_site_go/middleware"
	"digicompanions_site_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const (
	bodyLimit        = "64K"
	cleanupInterval  = 5 * time.Minute
	shutdownDeadline = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		stderrLog := zerolog.New(os.Stderr)
		stderrLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		stderrLog := zerolog.New(os.Stderr)
		stderrLog.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	for _, warning := range cfg.Warnings {
		log.Warn().Msg(warning)
	}

	ipExtractor, err := middleware.ClientIPExtractor(cfg.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure client IP extraction")
	}

	// Contact pipeline
	mailer := services.NewMailer(cfg, log)
	verifier := services.NewCaptchaVerifier(cfg)
	validator := services.NewContactValidator(verifier)
	dispatcher := services.NewContactDispatcher(cfg, mailer, log)
	monitor := services.NewSecurityEventMonitor(log)
	contact := handlers.NewContactHandler(cfg, validator, dispatcher, monitor, log)

	formLimiter := middleware.PublicFormRateLimiter(cfg.ContactRateLimit.Requests, cfg.ContactRateLimit.Interval)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = ipExtractor

	// Middleware
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	// Routes
	e.GET("/health", handlers.HealthHandler)

	api := e.Group("/api", middleware.APISecurityHeaders())
	api.GET("/contact/config", contact.Config)
	api.POST("/contact", contact.Submit, formLimiter.Middleware())

	// Background cleanup
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go formLimiter.Run(ctx, cleanupInterval)
	go monitor.Run(ctx, cleanupInterval)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.ServerPort).
			Str("environment", cfg.Environment).
			Str("captcha_provider", cfg.CaptchaProvider).
			Str("mail_transport", cfg.ResolvedMailTransport()).
			Msg("Server starting")
		serverErr <- e.Start(":" + cfg.ServerPort)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
