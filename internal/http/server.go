// Package http exposes the item service as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ichinichi/internal/core"
	"ichinichi/internal/cost"
	"ichinichi/internal/format"
	applog "ichinichi/internal/log"
	"ichinichi/internal/middleware/ratelimit"
	"ichinichi/internal/middleware/security"
	"ichinichi/internal/middleware/trace"
)

// ItemAPI is the part of services.ItemService the handlers use.
type ItemAPI interface {
	Create(ctx context.Context, in core.ItemInput) (core.Item, error)
	Update(ctx context.Context, id string, in core.ItemInput) (core.Item, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (core.Item, error)
	List(ctx context.Context) ([]core.Item, error)
	ListByCategory(ctx context.Context, category string) ([]core.Item, error)
	Categories(ctx context.Context) ([]string, error)
	Top(ctx context.Context, n int) ([]core.Item, error)
	Preview(in core.ItemInput) (cost.Preview, error)
	Summary(ctx context.Context) (core.SummaryData, error)
	Ping(ctx context.Context) error
}

// Options tunes the server. Zero values fall back to the defaults of each
// middleware.
type Options struct {
	Currency           string
	CORSOrigins        []string
	RateLimitPerMinute int
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	items     ItemAPI
	formatter *format.Formatter
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	detector  *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, items ItemAPI, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentHTTP, Handler: slog.Default().Handler()})
	}

	s := &Server{
		items:     items,
		formatter: format.New(opts.Currency),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		tracer:   trace.NewMiddleware(logger),
		detector: security.NewDetector(),
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(s.detector.TrustedProxies()); err != nil {
		logger.Warn("Failed to set trusted proxies", applog.FieldError, err)
	}
	engine.Use(gin.Recovery())
	engine.Use(s.tracer.Handler())
	engine.Use(security.Headers(security.DefaultHeadersConfig()))
	engine.Use(s.detector.Middleware())
	engine.Use(cors.New(corsConfig(opts.CORSOrigins)))

	s.routes(engine)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", s.handleHealth)
	r.GET("/readyz", s.handleReady)
	r.GET("/report", s.handleReport)

	limit := s.limiter.Middleware()
	api := r.Group("/api")
	{
		api.GET("/items", s.handleListItems)
		api.POST("/items", limit, s.handleCreateItem)
		api.GET("/items/:id", s.handleGetItem)
		api.PUT("/items/:id", limit, s.handleUpdateItem)
		api.DELETE("/items/:id", limit, s.handleDeleteItem)
		api.POST("/preview", s.handlePreview)
		api.GET("/summary", s.handleSummary)
		api.GET("/ranking", s.handleRanking)
		api.GET("/categories", s.handleCategories)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", trace.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", trace.HeaderRequestID, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.items.Ping(ctx); err != nil {
		applog.FromContext(c.Request.Context()).WarnContext(ctx, "Readiness probe failed", applog.FieldError, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
