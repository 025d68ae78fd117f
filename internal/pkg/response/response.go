package response

import "github.com/gin-gonic/gin"

// Every endpoint returns the same envelope:
//
//	{"message": string, "data": object|array, "error": object|null}
//
// with the HTTP status mirroring the outcome.

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(statusCode, gin.H{
		"message": message,
		"data":    data,
		"error":   nil,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"message": message,
		"data":    gin.H{},
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"message": message,
		"data":    gin.H{},
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
