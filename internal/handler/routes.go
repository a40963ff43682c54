package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/lumenedit/ledger-api/internal/middleware"
)

// RegisterRoutes sets up all API routes. eventsHandler and rateLimiter may be nil.
func RegisterRoutes(e *echo.Echo, ledgerHandler *LedgerHandler, eventsHandler *LedgerEventsHandler, rateLimiter *middleware.RateLimiter) {
	e.Validator = NewRequestValidator()

	// API version 1
	api := e.Group("/api/v1")
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Client ledger routes
	ledger := api.Group("/clients/:clientId/ledger")
	ledger.GET("", ledgerHandler.GetLedger)
	ledger.GET("/summary", ledgerHandler.GetSummary)
	ledger.GET("/export.csv", ledgerHandler.ExportCSV)
	ledger.GET("/export.pdf", ledgerHandler.ExportPDF)
	ledger.POST("/archive", ledgerHandler.Archive)

	// Statement events (WebSocket)
	if eventsHandler != nil {
		ledger.GET("/events", eventsHandler.Subscribe)
	}
}
