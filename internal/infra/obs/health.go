package obs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers backs the /livez and /readyz probes. Ready is the storage
// ping in mongo mode and nil in memory mode, where there is nothing to
// wait for.
type HealthHandlers struct {
	Ready func() error
}

// Livez reports process liveness only, never touching dependencies.
func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz fails with 503 while a dependency is unreachable so the load
// balancer holds traffic back.
func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
