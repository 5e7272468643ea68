package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the acting user set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// paginationParams reads page/page_size query params with sane bounds.
func paginationParams(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 10
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}
