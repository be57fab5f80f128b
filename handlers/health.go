package handlers

import (
	"net/http"

	"wanderly/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last snapshot of the background health monitor.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"healthy": status.Healthy(), "status": status, "message": "Hi, I'm Wanderly"})
}
