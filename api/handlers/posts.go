package handlers

import (
	"net/http"
	"socialmedia/models"
	"socialmedia/services"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var postService = services.NewPostService()

// CreatePost создает новый пост с картинками
func CreatePost(c *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
		Images  []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	images := make([]models.Image, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, models.Image{Name: img.Name, URL: img.URL})
	}

	post, err := postService.CreatePost(c.Request.Context(), userID.(int64), req.Title, req.Content, images)
	if err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost обновляет заголовок и текст поста, не трогая остальное
func UpdatePost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := postService.UpdateTitleAndContent(c.Request.Context(), postID, req.Title, req.Content); err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated"})
}

// DeletePost удаляет пост вместе с картинками
func DeletePost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	if err := postService.DeletePost(c.Request.Context(), postID); err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// GetPostsByAuthor возвращает посты автора
func GetPostsByAuthor(c *gin.Context) {
	authorID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	posts, err := postService.FindByAuthor(c.Request.Context(), authorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPostsByRange возвращает посты за интервал времени
func GetPostsByRange(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start time"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end time"})
		return
	}

	posts, err := postService.FindByCreatedAtRange(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetQueueStats возвращает статистику очереди (админский эндпоинт)
func GetQueueStats(c *gin.Context) {
	if services.QueueServiceInstance == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue service not available"})
		return
	}

	queueLength, err := services.QueueServiceInstance.GetQueueStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get queue stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue_length": queueLength,
		"workers":      services.QUEUE_WORKER_COUNT,
	})
}
