// Package server exposes a small read-only HTTP surface over the running
// supervisor: current day status, unit states and Prometheus metrics. It
// never drives transitions; the loop stays the single writer.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/svcm/internal/metrics"
	"github.com/loykin/svcm/internal/supervisor"
)

// Source yields the supervisor's published view. Implemented by
// *supervisor.Supervisor.
type Source interface {
	Snapshot() supervisor.Snapshot
}

// Router provides embeddable HTTP handlers for observing the supervisor.
// Endpoints:
//
//	GET /healthz   liveness probe
//	GET /status    day status and per-unit states as JSON
//	GET /metrics   Prometheus exposition
type Router struct {
	src Source
}

// NewRouter constructs a Router over src.
func NewRouter(src Source) *Router {
	return &Router{src: src}
}

// Handler returns an http.Handler powered by gin that can be mounted in any
// server/mux.
func (r *Router) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	g.GET("/healthz", r.handleHealth)
	g.GET("/status", r.handleStatus)
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Callers shut it down with the returned server's Close or Shutdown.
func NewServer(addr string, src Source) *http.Server {
	r := NewRouter(src)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.src.Snapshot())
}
