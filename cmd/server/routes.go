// Package main provides the GradeLens chat server entry point.
package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gradelens/gradelens-go/internal/buildinfo"
	"github.com/gradelens/gradelens-go/internal/catalog"
	"github.com/gradelens/gradelens-go/internal/chat"
	"github.com/gradelens/gradelens-go/internal/config"
	"github.com/gradelens/gradelens-go/internal/convo"
	"github.com/gradelens/gradelens-go/internal/ctxutil"
	apperrors "github.com/gradelens/gradelens-go/internal/errors"
	"github.com/gradelens/gradelens-go/internal/search"
	"github.com/gradelens/gradelens-go/internal/sentry"
	"github.com/gradelens/gradelens-go/internal/storage"
)

// maxSearchResults caps the limit query parameter for /api/search.
const maxSearchResults = 50

// setupRoutes configures all HTTP routes
func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	pipeline *chat.Pipeline,
	searchIdx *search.Index,
	cat *catalog.Cache,
	sessions *convo.MemoryStore,
	db *storage.DB,
	registry *prometheus.Registry,
) {
	// Root endpoint - service identity
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "gradelens",
			"version": buildinfo.Version,
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness Probe - only that the process is running, never dependencies
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - full dependency check
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		gradeRows, _ := db.CountGradeRows(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"data": gin.H{
				"grade_rows": gradeRows,
				"professors": cat.Len(),
				"courses":    searchIdx.Len(),
				"sessions":   sessions.Len(),
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	api := router.Group("/api")
	api.POST("/chat", chatHandler(pipeline))
	api.GET("/search", searchHandler(searchIdx))
	api.GET("/professors", professorsHandler(cat))

	// Prometheus metrics endpoint, Basic Auth when a password is set
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsPassword != "", cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// chatHandler processes one chat turn. A missing session ID starts a new
// conversation; the assigned ID is echoed so the client can continue it.
func chatHandler(pipeline *chat.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chat.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}
		c.Header("X-Session-ID", req.SessionID)

		ctx := ctxutil.WithSessionID(c.Request.Context(), req.SessionID)
		resp, err := pipeline.Handle(ctx, req)
		if err != nil {
			sentry.CaptureExceptionWithContext(ctx, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.GetUserMessage(err)})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// searchHandler serves course search over the BM25 index.
func searchHandler(searchIdx *search.Index) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
			return
		}

		limit := 10
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}
		if limit > maxSearchResults {
			limit = maxSearchResults
		}

		results, err := searchIdx.Search(query, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"results": results,
			"count":   len(results),
		})
	}
}

// professorsHandler lists the professor catalog.
func professorsHandler(cat *catalog.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := cat.Names(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"professors": names,
			"count":      len(names),
		})
	}
}
