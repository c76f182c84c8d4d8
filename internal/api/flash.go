package api

import "github.com/gin-gonic/gin"

const flashCookie = "flash"

// setFlash stores a one-shot message shown by the next index render.
func setFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookie, message, 60, "/", "", false, true)
}

// popFlash returns the pending message, if any, and clears it.
func popFlash(c *gin.Context) string {
	message, err := c.Cookie(flashCookie)
	if err != nil || message == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return message
}
