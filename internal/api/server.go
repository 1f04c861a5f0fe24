// Package api provides the HTTP trigger surface for the refresh coordination
// layer. Authorization and the tenant-facing CRUD endpoints live in the
// dashboard's main API; this server carries only refresh triggers, refresh
// status, and health.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/seo-dashboard/internal/storage"
	"github.com/seo-dashboard/internal/types"
)

// RefreshTrigger is the coordination-layer entry point.
// Implemented by refresh.Coordinator.
type RefreshTrigger interface {
	Refresh(ctx context.Context, tenantID string, resource types.ResourceType, force bool) (*types.RefreshResult, error)
}

// SummaryReader returns the last stored refresh summary for a resource.
// Implemented by storage.RedisCache.
type SummaryReader interface {
	GetSummary(ctx context.Context, key types.ResourceKey) (*types.Summary, bool, error)
}

// Pinger checks backing-store reachability for the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP API server
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	trigger    RefreshTrigger
	summaries  SummaryReader
	pingers    map[string]Pinger
	config     *ServerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new API server instance
func NewServer(
	config *ServerConfig,
	trigger RefreshTrigger,
	summaries SummaryReader,
	postgres *storage.PostgresDB,
	clickhouse *storage.ClickHouseDB,
	redis *storage.RedisCache,
) *Server {
	pingers := make(map[string]Pinger)
	if postgres != nil {
		pingers["postgres"] = postgres
	}
	if clickhouse != nil {
		pingers["clickhouse"] = clickhouse
	}
	if redis != nil {
		pingers["redis"] = redis
	}

	s := &Server{
		router:    mux.NewRouter(),
		trigger:   trigger,
		summaries: summaries,
		pingers:   pingers,
		config:    config,
	}

	s.setupRouter()

	return s
}

func (s *Server) setupRouter() {
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/tenants/{id}/refresh/{resource}", s.handleRefresh).Methods("POST")
	api.HandleFunc("/tenants/{id}/refresh/{resource}/status", s.handleRefreshStatus).Methods("GET")
}

// handleHealth reports reachability of the backing stores
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	overall := "healthy"
	stores := make(map[string]string, len(s.pingers))
	for name, pinger := range s.pingers {
		if err := pinger.Ping(ctx); err != nil {
			stores[name] = "unreachable"
			status = http.StatusServiceUnavailable
			overall = "degraded"
		} else {
			stores[name] = "ok"
		}
	}

	respondJSON(w, status, map[string]interface{}{
		"status": overall,
		"stores": stores,
	})
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router returns the configured router (used in handler tests)
func (s *Server) Router() *mux.Router {
	return s.router
}
