package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/lumenedit/ledger-api/internal/config"
	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/events"
	kafkaevents "github.com/lumenedit/ledger-api/internal/events/kafka"
	"github.com/lumenedit/ledger-api/internal/handler"
	"github.com/lumenedit/ledger-api/internal/middleware"
	"github.com/lumenedit/ledger-api/internal/report"
	"github.com/lumenedit/ledger-api/internal/repository"
	"github.com/lumenedit/ledger-api/internal/repository/storage"
	"github.com/lumenedit/ledger-api/internal/service"
	"github.com/lumenedit/ledger-api/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	// Ledger system of record
	source, closeSource, err := repository.NewLedgerSource(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("ledger_source", cfg.LedgerSource).Msg("Failed to initialize ledger source")
	}
	defer closeSource()

	// Optional statement archive
	var archive domain.StatementArchive
	if cfg.S3.Bucket != "" {
		s3Repo, err := storage.NewS3StatementRepository(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 statement archive")
		}
		archive = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Statement archive enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, statement archiving disabled")
	}

	// Optional PDF renderer
	var renderer domain.PDFRenderer
	if cfg.GotenbergURL != "" {
		gotenberg := report.NewClient(cfg.GotenbergURL)
		if err := gotenberg.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("url", cfg.GotenbergURL).Msg("Gotenberg not reachable at startup")
		}
		renderer = gotenberg
	} else {
		log.Warn().Msg("GOTENBERG_URL not set, PDF export disabled")
	}

	// Event publishers: WebSocket subscribers always, Kafka when configured
	hub := websocket.NewHub()
	var broker domain.EventPublisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := kafkaevents.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close Kafka publisher")
			}
		}()
		broker = kafkaPublisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publishing enabled")
	}

	publisher := events.Fanout{hub, broker}

	// Initialize services
	ledgerService := service.NewLedgerService(source)
	statementService := service.NewStatementService(ledgerService, archive, renderer, publisher, cfg.StatementURLTTL)

	// Initialize handlers
	ledgerHandler := handler.NewLedgerHandler(ledgerService, statementService)
	eventsHandler := handler.NewLedgerEventsHandler(hub, cfg.CORSOrigins)

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, ledgerHandler, eventsHandler, rateLimiter)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("ledger_source", cfg.LedgerSource).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
