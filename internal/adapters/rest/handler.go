// Package rest exposes the catalog queries over HTTP.
package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc      *services.Catalog
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	router   *gin.Engine
}

// NewHandler initializes the HTTP adapter and sets up routes. gatherer may be
// nil, in which case /metrics is not served.
func NewHandler(svc *services.Catalog, logger *zap.Logger, gatherer prometheus.Gatherer) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:      svc,
		logger:   logger.Named("http"),
		gatherer: gatherer,
		router:   gin.New(),
	}

	h.middleware()
	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) middleware() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}

	h.router.Use(gin.Recovery(), h.requestLog(), cors.New(corsConfig))
}

func (h *Handler) routes() {
	h.router.GET("/health", h.HealthCheck)
	if h.gatherer != nil {
		h.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	api := h.router.Group("/api")
	{
		api.GET("/playlists/:id/tracks", h.PlaylistTracks)
		api.GET("/artists/:id/summary", h.ArtistSummary)
	}
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			h.logger.Error("request failed", fields...)
			return
		}
		h.logger.Debug("request", fields...)
	}
}

// writeError maps service errors to status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
