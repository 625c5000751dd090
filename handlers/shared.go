package handlers

import (
	"net/http"
	"strconv"

	"campusrun/models"
	"campusrun/utils"

	"github.com/gin-gonic/gin"
)

// getActor returns the authenticated user set by the auth middleware.
func getActor(c *gin.Context) (*models.User, bool) {
	actorVal, exists := c.Get("actor")
	if !exists {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED")
		c.Abort()
		return nil, false
	}
	actor, ok := actorVal.(*models.User)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED")
		c.Abort()
		return nil, false
	}
	return actor, true
}

// pageParams parses page/limit query parameters with sane bounds.
func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit
}

// ok writes the standard success envelope.
func ok(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
