// Package server exposes the recruiting workflows over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/recruiting"
)

const (
	DefaultAddr            = ":8080"
	defaultShutdownTimeout = 30 * time.Second
	// maxUploadMemory bounds the multipart form kept in memory.
	maxUploadMemory = 32 << 20
)

// Config configures the HTTP listener.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	AllowOrigins    []string      `mapstructure:"allow-origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	Debug           bool          `mapstructure:"-"`
}

type Server struct {
	svc    *recruiting.Service
	engine *gin.Engine
	http   *http.Server
	cfg    Config
	logger *zap.Logger
}

func New(svc *recruiting.Service, cfg Config, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{svc: svc, cfg: cfg, logger: logger}

	engine := gin.New()
	engine.MaxMultipartMemory = maxUploadMemory
	engine.Use(requestID(), requestLogger(logger), gin.Recovery())
	engine.Use(cors.New(corsConfig(cfg.AllowOrigins)))
	s.routes(engine)

	s.engine = engine
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	cfg.ExposeHeaders = []string{requestIDHeader}
	return cfg
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.health)

	r.POST("/upload-cv", s.uploadCV)
	r.POST("/list-candidate", s.listCandidates)
	r.POST("/candidate/bulk-upload", s.bulkUpload)
	r.GET("/candidate/:id", s.getCandidate)
	r.PUT("/candidate/:id", s.updateCandidate)
	r.DELETE("/candidate/:id", s.deleteCandidate)
	r.GET("/candidate/:id/job/:job_id", s.getMatching)

	r.POST("/job", s.createJob)
	r.GET("/job", s.listJobs)
	r.GET("/job/:id", s.getJob)
	r.DELETE("/job/:id", s.deleteJob)

	r.POST("/process-matching", s.processMatching)
	r.POST("/matching/enqueue", s.enqueueMatching)
	r.POST("/matching/shortlist-notify", s.shortlistNotify)
	r.GET("/data-matching", s.allMatchings)
	r.POST("/data-matching", s.listMatchings)

	r.POST("/webhook/twilio", s.twilioWebhook)
}

// Handler returns the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("addr", s.cfg.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.svc.Mode().String()})
}
