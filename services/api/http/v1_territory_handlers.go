package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/irve-dashboard/internal/aggregate"
)

// handleV1Departments ranks departments by number of points
// GET /api/v1/territory/departments?top=10
func (s *Server) handleV1Departments(c *gin.Context) {
	n, ok := s.top(c)
	if !ok {
		return
	}
	t, ok := s.view(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": aggregate.TopDepartments(t, n),
		"meta": gin.H{"top": n},
	})
}

// handleV1DCShare returns the DC share per department
// GET /api/v1/territory/dc-share?top=10&min_points=20
func (s *Server) handleV1DCShare(c *gin.Context) {
	n, ok := s.top(c)
	if !ok {
		return
	}
	minPoints, err := queryPositive(c, "min_points", s.cfg.MinDCPoints)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := s.view(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": aggregate.DCShareByDepartment(t, minPoints, n),
		"meta": gin.H{"top": n, "min_points": minPoints},
	})
}

// handleV1PeoplePerCharger returns inhabitants per charging point
// GET /api/v1/territory/people-per-charger?top=10
func (s *Server) handleV1PeoplePerCharger(c *gin.Context) {
	n, ok := s.top(c)
	if !ok {
		return
	}
	t, ok := s.view(c)
	if !ok {
		return
	}

	coverage := aggregate.PeoplePerCharger(t, s.population)
	c.JSON(http.StatusOK, gin.H{
		"data": aggregate.Top(coverage, n),
		"meta": gin.H{"top": n, "departments": len(coverage)},
	})
}

// handleV1Choropleth returns department boundaries annotated with counts
// GET /api/v1/territory/choropleth
func (s *Server) handleV1Choropleth(c *gin.Context) {
	if s.departments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "choropleth requires IRVE_GEOJSON_PATH"})
		return
	}
	t, ok := s.view(c)
	if !ok {
		return
	}

	fc, unmatched := s.departments.Choropleth(aggregate.DepartmentCounts(t))
	c.JSON(http.StatusOK, gin.H{
		"data": fc,
		"meta": gin.H{
			"features":  len(fc.Features),
			"unmatched": unmatched,
		},
	})
}
