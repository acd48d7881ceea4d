package utils

import "github.com/gin-gonic/gin"

// Fail writes a failure JSON response with the given status.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": msg,
	})
}



