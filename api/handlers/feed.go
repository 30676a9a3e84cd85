package handlers

import (
	"net/http"
	"strconv"

	"socialmedia/services"

	"github.com/gin-gonic/gin"
)

var feedService = services.NewFeedService()

func pageParams(c *gin.Context) (int, int) {
	page := 1
	perPage := 20
	if parsed, err := strconv.Atoi(c.Query("page")); err == nil && parsed > 0 {
		page = parsed
	}
	if parsed, err := strconv.Atoi(c.Query("per_page")); err == nil && parsed > 0 && parsed <= 100 {
		perPage = parsed
	}
	return page, perPage
}

// GetFeed - лента постов авторов, на которых подписан пользователь
func GetFeed(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, perPage := pageParams(c)
	feed, err := feedService.GetUserFeed(c.Request.Context(), userID.(int64), page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get feed"})
		return
	}
	c.JSON(http.StatusOK, feed)
}

// GetGlobalFeed - общая лента всех постов системы
func GetGlobalFeed(c *gin.Context) {
	page, perPage := pageParams(c)
	feed, err := feedService.GetGlobalFeed(c.Request.Context(), page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get feed"})
		return
	}
	c.JSON(http.StatusOK, feed)
}

// GetUserPosts - батч-запрос постов по списку пользователей
func GetUserPosts(c *gin.Context) {
	var req struct {
		UserIDs []int64 `json:"user_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := feedService.GetUserPosts(c.Request.Context(), req.UserIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": result})
}

// InvalidateUserFeed инвалидирует кеш ленты пользователя (админский эндпоинт)
func InvalidateUserFeed(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := feedService.InvalidateUserFeed(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cache invalidated successfully"})
}

// RebuildUserFeed перестраивает кеш ленты пользователя из БД (админский эндпоинт)
func RebuildUserFeed(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := feedService.RebuildUserFeedFromDB(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rebuild feed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feed rebuilt successfully"})
}

// RebuildAllFeeds перестраивает кеши всех лент из БД (админский эндпоинт)
func RebuildAllFeeds(c *gin.Context) {
	if err := feedService.RebuildAllFeeds(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rebuild all feeds"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All feeds rebuilt successfully"})
}
