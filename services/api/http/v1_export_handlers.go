package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/irve-dashboard/internal/aggregate"
	"github.com/02loveslollipop/irve-dashboard/internal/metrics"
	"github.com/02loveslollipop/irve-dashboard/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleV1Missing returns per-column missing counts and duplicate rows
// GET /api/v1/quality/missing
func (s *Server) handleV1Missing(c *gin.Context) {
	t, ok := s.view(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": aggregate.MissingValues(t),
		"meta": gin.H{
			"rows":       t.Len(),
			"duplicates": aggregate.DuplicateRows(t),
		},
	})
}

// handleV1ExportXLSX downloads the filtered views as a workbook
// GET /api/v1/export/xlsx?department=13
func (s *Server) handleV1ExportXLSX(c *gin.Context) {
	n, ok := s.top(c)
	if !ok {
		return
	}
	t, ok := s.view(c)
	if !ok {
		return
	}

	data, err := report.BuildXLSX(report.BuildSummary(t, s.population, n, s.cfg.MinDCPoints, s.cfg.CleanPath))
	metrics.IncExport(err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := fmt.Sprintf("irve_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
