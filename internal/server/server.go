// Package server exposes the recommendation engine over HTTP. It is a thin
// pass-through layer: validation failures map to 400, a missing catalog to
// 503, everything else is delegated to the matcher.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confscout/speaker-scout/internal/catalog"
	"github.com/confscout/speaker-scout/internal/matcher"
)

const defaultThreshold = 6.0

// Recommender is the single operation the server needs from the engine.
type Recommender interface {
	Recommend(ctx context.Context, query matcher.Query, cat *catalog.Catalog) (*matcher.MatchSet, error)
}

// Config holds the HTTP front end settings.
type Config struct {
	// Address to listen on, e.g. ":8000".
	Address string
	// CORSOrigin is the allowed front-end origin. Empty disables CORS
	// headers.
	CORSOrigin string
}

// Server routes recommendation requests to the matcher.
type Server struct {
	router      *gin.Engine
	catalog     *catalog.Catalog
	recommender Recommender
	logger      *zap.Logger
	address     string
}

// New creates the HTTP server. The catalog is read-only and shared across
// requests.
func New(cfg Config, cat *catalog.Catalog, recommender Recommender, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	if cfg.CORSOrigin != "" {
		router.Use(corsMiddleware(cfg.CORSOrigin))
	}

	s := &Server{
		router:      router,
		catalog:     cat,
		recommender: recommender,
		logger:      logger,
		address:     cfg.Address,
	}

	router.GET("/", s.root)
	router.GET("/speakers", s.speakers)
	router.POST("/match", s.match)

	return s
}

// Run blocks serving HTTP on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting http server", zap.String("address", s.address))
	return s.router.Run(s.address)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":         "Speaker Recommendation API",
		"speakers_loaded": s.catalog.Len(),
	})
}

func (s *Server) speakers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"speakers": s.catalog.Speakers,
		"count":    s.catalog.Len(),
	})
}

type matchRequest struct {
	UserBio   string   `json:"user_bio"`
	Threshold *float64 `json:"threshold"`
}

func (s *Server) match(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if s.catalog.Len() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "speaker data not loaded"})
		return
	}

	threshold := defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	query := matcher.Query{Context: req.UserBio, Threshold: threshold}

	set, err := s.recommender.Recommend(c.Request.Context(), query, s.catalog)
	if err != nil {
		var validationErr *matcher.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		case errors.Is(err, matcher.ErrCatalogEmpty):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "speaker data not loaded"})
		default:
			s.logger.Error("matching failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "matching failed"})
		}
		return
	}

	c.JSON(http.StatusOK, set)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
