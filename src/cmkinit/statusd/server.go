// Package statusd exposes a small read-only HTTP view over a single
// cmkinit invocation: a health check, the build ledger (C8), and the
// progress of whichever build is currently running in this process (if
// any). It has no auth and no job queue — unlike the teacher's server,
// cmkinit builds exactly one image per process, so there is nothing to
// dispatch or cancel over the wire.
package statusd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bitswalk/cmkinit/src/cmkinit/ledger"
	"github.com/bitswalk/cmkinit/src/common/logs"
	"github.com/gin-gonic/gin"
)

var log = logs.NewDefault()

// SetLogger overrides the package logger.
func SetLogger(l *logs.Logger) { log = l }

// Server is the status HTTP server.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	ledger     *ledger.Store
	tracker    *Tracker
}

// New builds a Server. store may be nil, in which case /builds and
// /builds/:id report that history is unavailable rather than erroring.
func New(store *ledger.Store, tracker *Tracker) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	s := &Server{router: router, ledger: store, tracker: tracker}
	s.registerRoutes()
	return s
}

// Run blocks, serving on addr until ctx is cancelled. addr may end in
// ":0" to bind an ephemeral port — the port actually bound is logged,
// since a caller can't otherwise learn it before Run returns.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("statusd: listen: %w", err)
	}

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("statusd listening", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("statusd: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"latency", time.Since(start),
		)
	}
}
