package handler

import (
	"net/http"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/lumenedit/ledger-api/internal/websocket"
	"github.com/rs/zerolog/log"
)

// LedgerEventsHandler streams statement events for one ledger client over WebSocket
type LedgerEventsHandler struct {
	hub            *websocket.Hub
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewLedgerEventsHandler creates a new LedgerEventsHandler
func NewLedgerEventsHandler(hub *websocket.Hub, allowedOrigins []string) *LedgerEventsHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &LedgerEventsHandler{
		hub:            hub,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *LedgerEventsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser subscribers send no Origin header
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// Subscribe handles GET /api/v1/clients/:clientId/ledger/events
func (h *LedgerEventsHandler) Subscribe(c echo.Context) error {
	var req struct {
		ClientID string `param:"clientId" validate:"required,max=64,clientid"`
	}
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &req); err != nil {
		return NewValidationError(c, "Invalid path parameters", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Invalid ledger request", validationErrors(err))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error
		log.Warn().Err(err).Str("client_id", req.ClientID).Msg("WebSocket upgrade failed")
		return nil
	}

	sub := websocket.Subscribe(h.hub, conn, req.ClientID)

	log.Info().
		Str("client_id", req.ClientID).
		Str("subscriber_id", sub.ID()).
		Msg("WebSocket subscriber connected")

	return nil
}
