package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// RunGauge reports in-flight workflow runs.
type RunGauge interface {
	InUse() int
	MaxConcurrent() int
}

// Metrics reports runtime memory, goroutines and, when runs is set, the
// execution slots in use. OTLP metrics are exported separately.
func Metrics(runs RunGauge) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		body := gin.H{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"goroutines": runtime.NumGoroutine(),
			"memory": gin.H{
				"alloc_mb":       m.Alloc / 1024 / 1024,
				"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
				"sys_mb":         m.Sys / 1024 / 1024,
				"gc_runs":        m.NumGC,
			},
		}
		if runs != nil {
			body["executions"] = gin.H{
				"in_flight": runs.InUse(),
				"max":       runs.MaxConcurrent(),
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
