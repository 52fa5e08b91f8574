package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/irve-dashboard/internal/aggregate"
	"github.com/02loveslollipop/irve-dashboard/internal/cache"
	"github.com/02loveslollipop/irve-dashboard/internal/geo"
	"github.com/02loveslollipop/irve-dashboard/internal/irve"
	"github.com/02loveslollipop/irve-dashboard/internal/metrics"
	"github.com/02loveslollipop/irve-dashboard/internal/table"
	"github.com/02loveslollipop/irve-dashboard/services/api/config"
	"github.com/02loveslollipop/irve-dashboard/services/api/db"
)

// RunStore lists pipeline runs. *db.Store implements it.
type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]db.IngestRun, error)
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg         config.Config
	store       RunStore
	tables      *cache.Loader[*irve.CleanTable]
	departments *geo.Departments
	population  aggregate.Population
	engine      *gin.Engine
}

// Option customizes a Server.
type Option func(*Server)

// WithRunStore enables the run history endpoint.
func WithRunStore(store RunStore) Option {
	return func(s *Server) { s.store = store }
}

// WithDepartments enables the choropleth endpoint.
func WithDepartments(d *geo.Departments) Option {
	return func(s *Server) { s.departments = d }
}

// WithPopulation replaces the embedded department population table.
func WithPopulation(p aggregate.Population) Option {
	return func(s *Server) { s.population = p }
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	metrics.Init()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())
	engine.Use(metrics.Middleware())

	server := &Server{
		cfg:        cfg,
		tables:     cache.NewLoader(loadTable),
		population: aggregate.DefaultPopulation(),
		engine:     engine,
	}
	server.tables.OnLoad = func(path string, took time.Duration) {
		log.Printf("loaded clean table %s in %s", path, took.Round(time.Millisecond))
	}
	for _, opt := range opts {
		opt(server)
	}

	server.registerRoutes()
	server.registerV1Routes()
	return server
}

func loadTable(path string) (*irve.CleanTable, error) {
	start := time.Now()
	t, err := table.Load(context.Background(), path)
	metrics.ObserveDatasetLoad(t.Len(), time.Since(start), err)
	return t, err
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", metrics.Handler())
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok", "dataset": s.cfg.CleanPath}
	if _, err := s.tables.Get(s.cfg.CleanPath); err != nil {
		status["status"] = "degraded"
		status["error"] = err.Error()
	}
	c.JSON(http.StatusOK, status)
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func apiVersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", "v1")
		c.Next()
	}
}
