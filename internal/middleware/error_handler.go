package middleware

import (
	"github.com/gin-gonic/gin"
	"marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/logger"
)

func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		statusCode := errors.HTTPStatusFromError(err.Err)
		if statusCode >= 500 {
			log.Error("Request failed", "error", err.Err, "path", c.FullPath())
			c.JSON(statusCode, gin.H{"error": "internal server error"})
			return
		}

		c.JSON(statusCode, gin.H{
			"error": err.Error(),
		})
	}
}
