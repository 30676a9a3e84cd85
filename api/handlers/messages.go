package handlers

import (
	"net/http"
	"socialmedia/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

var messageService = services.NewMessageService()

// SendMessage - отправка личного сообщения
func SendMessage(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ReceiverID int64  `json:"receiver_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	message, err := messageService.SendMessage(c.Request.Context(), userID.(int64), req.ReceiverID, req.Content)
	if err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, message)
}

// GetDialog - переписка с конкретным пользователем
func GetDialog(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	peerID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	page, perPage := pageParams(c)
	messages, err := messageService.GetDialog(c.Request.Context(), userID.(int64), peerID, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
