package statusd

import (
	"errors"
	"net/http"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/builds", s.handleListBuilds)
	s.router.GET("/builds/:id", s.handleGetBuild)
	s.router.GET("/builds/:id/progress", s.handleBuildProgress)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListBuilds(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no ledger configured"})
		return
	}
	records, err := s.ledger.List(0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"builds": records})
}

func (s *Server) handleGetBuild(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no ledger configured"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}
	rec, err := s.ledger.Get(id)
	if err != nil {
		if errors.Is(err, cmerrors.ErrConfigNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "build not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// handleBuildProgress reports live progress for the build currently
// tracked in this process, falling back to the ledger for a build that
// has already finished (in a prior process, or earlier this one).
func (s *Server) handleBuildProgress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}

	if s.tracker != nil {
		if progress, ok := s.tracker.Current(); ok && progress.BuildID == id {
			c.JSON(http.StatusOK, progress)
			return
		}
	}

	if s.ledger != nil {
		rec, err := s.ledger.Get(id)
		if err == nil {
			c.JSON(http.StatusOK, progressFromRecord(rec))
			return
		}
		if !errors.Is(err, cmerrors.ErrConfigNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "no progress known for that build id"})
}
