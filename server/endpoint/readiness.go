package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/paiflow/component"
)

// Readiness answers 503 while any component is unhealthy, naming the
// failing ones under "waiting_on" so an operator can tell a store outage
// from a lost Redis relay without reading /health. Degraded components do
// not hold traffic.
func Readiness(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var waiting []string
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				if h.Status == component.StatusUnhealthy {
					waiting = append(waiting, h.Name)
				}
			}
		}
		if len(waiting) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "waiting_on": waiting})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ready": true})
	}
}
