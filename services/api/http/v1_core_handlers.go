package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/irve-dashboard/internal/aggregate"
)

// handleV1KPIs returns the headline metrics of the filtered view
// GET /api/v1/core/kpis?department=75&current=dc
func (s *Server) handleV1KPIs(c *gin.Context) {
	t, ok := s.view(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": aggregate.ComputeKPIs(t),
	})
}

// handleV1Points returns located points for the map, sampled to limit
// GET /api/v1/core/points?limit=5000
func (s *Server) handleV1Points(c *gin.Context) {
	limit, err := queryPositive(c, "limit", s.cfg.MapLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, ok := s.view(c)
	if !ok {
		return
	}

	points := aggregate.MapPoints(t, limit)
	c.JSON(http.StatusOK, gin.H{
		"data": points,
		"meta": gin.H{
			"count":    len(points),
			"filtered": t.Len(),
		},
	})
}

// handleV1Runs returns recent pipeline runs
// GET /api/v1/core/runs?limit=20
func (s *Server) handleV1Runs(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history requires DATABASE_URL"})
		return
	}

	limit, err := queryPositive(c, "limit", 20)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
		"meta": gin.H{
			"count": len(runs),
		},
	})
}
