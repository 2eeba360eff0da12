package core

import "github.com/gin-gonic/gin"

// respondError sends the unified error payload {"error": {"code", "message"}}.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondAuthError uses the flat {success, error} shape the login/logout
// widgets expect instead of the unified payload.
func respondAuthError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}
