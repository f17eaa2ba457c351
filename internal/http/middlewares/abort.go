package middlewares

import "github.com/gin-gonic/gin"

// abortJSON writes the same error envelope the handlers use.
func abortJSON(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)

	errBody := gin.H{"code": code}
	if s, ok := reqID.(string); ok && s != "" {
		errBody["requestId"] = s
	}

	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   errBody,
	})
}
