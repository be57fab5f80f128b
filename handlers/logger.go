package handlers

import (
	"wanderly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request-scoped logger set by middleware.RequestLogger,
// or the global one when the request did not pass through it.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get(utils.ContextLoggerKey); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}
