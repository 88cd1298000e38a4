package http

import "github.com/gin-gonic/gin"

func ErrorResponse(c *gin.Context, code int, message, kind string) {
	c.JSON(code, gin.H{"error": message, "code": kind})
}

// RetryableErrorResponse tells the client the same request may succeed later.
func RetryableErrorResponse(c *gin.Context, code int, message, kind string) {
	c.JSON(code, gin.H{"error": message, "code": kind, "retryable": true})
}

func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}
