package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/config"
	"github.com/studika/gradebook-backend/internal/model"
	"github.com/studika/gradebook-backend/internal/response"
	"github.com/studika/gradebook-backend/internal/service"
	ws "github.com/studika/gradebook-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// AuditHandler handles audit trail inspection endpoints.
type AuditHandler struct {
	auditService *service.AuditService
	rdb          *redis.Client
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService *service.AuditService, rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		rdb:          rdb,
		log:          log.With().Str("component", "audit_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
	}
}

// List godoc
// GET /api/v1/admin/audit?actor_id=&action=&table=&page=&per_page=
// Returns a filtered, paginated slice of the audit trail, newest first.
func (h *AuditHandler) List(c *gin.Context) {
	filter := model.AuditFilter{
		Action:    c.Query("action"),
		TableName: c.Query("table"),
	}
	if raw := c.Query("actor_id"); raw != "" {
		actorID, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		filter.ActorID = actorID
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	entries, total, err := h.auditService.List(c.Request.Context(), filter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := (total + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"entries": entries}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// Stream godoc
// WS /ws/v1/audit/stream
// Upgrades to WebSocket and relays live audit entries as they are recorded.
// Entries flow through the Redis pub/sub channel, so every server instance
// sees the full stream regardless of which one handled the mutation.
func (h *AuditHandler) Stream(c *gin.Context) {
	if h.rdb == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.rdb.Subscribe(c.Request.Context(), config.CacheKey.AuditChannel())
	defer sub.Close()

	// Reader goroutine: detects the client going away and forwards pings to
	// the select loop below. The connection allows a single writer, so every
	// write, pong replies included, happens on that loop.
	done := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(done)
		for {
			var envelope ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &envelope); err != nil {
				return
			}
			if envelope.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var entry model.AuditEntry
			if err := json.Unmarshal([]byte(msg.Payload), &entry); err != nil {
				h.log.Warn().Err(err).Msg("Malformed audit event on channel")
				continue
			}
			if err := ws.WriteTyped(conn, ws.AuditEventResponse{Event: ws.EventAudit, Entry: entry}); err != nil {
				return
			}
		}
	}
}
