// Package api provides the read-only JSON HTTP surface over the
// collected items, entities, events, themes, and sources (C16).
package api

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/pkg/database"
	"github.com/constraintwatch/constraintwatch/pkg/version"
)

// Server is the read-only HTTP API server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	db         *ent.Client
	dbClient   *database.Client
}

// NewServer builds the gin engine and registers every route. dbClient is
// used only for the health check's connection pool stats; every other
// handler queries through db directly.
func NewServer(db *ent.Client, dbClient *database.Client) *Server {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())
	e.Use(accessLogMiddleware(zerolog.New(os.Stdout).With().Timestamp().Logger()))

	s := &Server{engine: e, db: db, dbClient: dbClient}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.healthHandler)
	api.GET("/heatmap", s.heatmapHandler)
	api.GET("/themes", s.listThemesHandler)
	api.GET("/themes/:id", s.getThemeHandler)
	api.GET("/events", s.listEventsHandler)
	api.GET("/sources", s.listSourcesHandler)
	api.GET("/sources/stats", s.sourceStatsHandler)
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener. Used
// by tests to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.engine}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /api/health.
func (s *Server) healthHandler(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	var dbHealth *database.HealthStatus
	if s.dbClient != nil {
		var err error
		dbHealth, err = database.Health(reqCtx, s.dbClient.DB())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": dbHealth})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"version":  version.Full(),
		"database": dbHealth,
	})
}
