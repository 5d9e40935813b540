package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uyouii/zeta-algorithms/config"
	"github.com/uyouii/zeta-algorithms/utils"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP surface of the zeta test
type Server struct {
	router  *gin.Engine
	cfg     *config.Config
	metrics *metrics
}

// NewServer creates the router with its routes
func NewServer(cfg *config.Config) *Server {
	m := newMetrics()
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(m))

	s := &Server{
		router:  router,
		cfg:     cfg,
		metrics: m,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/zeta", s.handleZeta)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger := utils.GetLogger(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("zeta server listening", zap.String("addr", s.cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("zeta server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs every request and records it in the request metrics.
func requestLogger(m *metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.observeRequest(c.Request.Method, path, c.Writer.Status(), elapsed)
		utils.GetLogger(c.Request.Context()).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", elapsed))
	}
}
