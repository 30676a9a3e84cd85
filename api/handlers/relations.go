package handlers

import (
	"errors"
	"net/http"
	"socialmedia/api/middleware"
	"socialmedia/services"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var relationService = services.NewRelationService()

func relationStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrFriendshipNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Subscribe - подписка на посты пользователя
func Subscribe(c *gin.Context) {
	type req struct {
		SubscriberID int64 `json:"subscriber_id"`
		PublisherID  int64 `json:"publisher_id"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	start := time.Now()
	err := relationService.Subscribe(c.Request.Context(), r.SubscriberID, r.PublisherID)
	middleware.RecordRelationOperation("subscribe", "api", time.Since(start), err)
	if err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscribed"})
}

// Unsubscribe - отписка от постов пользователя
func Unsubscribe(c *gin.Context) {
	type req struct {
		SubscriberID int64 `json:"subscriber_id"`
		PublisherID  int64 `json:"publisher_id"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	start := time.Now()
	err := relationService.Unsubscribe(c.Request.Context(), r.SubscriberID, r.PublisherID)
	middleware.RecordRelationOperation("unsubscribe", "api", time.Since(start), err)
	if err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed"})
}

// SendFriendRequest - отправка заявки в друзья
func SendFriendRequest(c *gin.Context) {
	type req struct {
		SenderID   int64 `json:"sender_id"`
		ReceiverID int64 `json:"receiver_id"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	start := time.Now()
	request, err := relationService.SendFriendRequest(c.Request.Context(), r.SenderID, r.ReceiverID)
	middleware.RecordRelationOperation("send_friend_request", "api", time.Since(start), err)
	if err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, request)
}

// AcceptFriendRequest - подтверждение заявки в друзья
func AcceptFriendRequest(c *gin.Context) {
	type req struct {
		RequestID int64 `json:"request_id"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	start := time.Now()
	err := relationService.AcceptFriendRequest(c.Request.Context(), r.RequestID)
	middleware.RecordRelationOperation("accept_friend_request", "api", time.Since(start), err)
	if err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request accepted"})
}

// RejectFriendRequest - отклонение заявки в друзья
func RejectFriendRequest(c *gin.Context) {
	type req struct {
		RequestID int64 `json:"request_id"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	start := time.Now()
	err := relationService.RejectFriendRequest(c.Request.Context(), r.RequestID)
	middleware.RecordRelationOperation("reject_friend_request", "api", time.Since(start), err)
	if err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request rejected"})
}

// DeleteFriend - удаление из друзей
func DeleteFriend(c *gin.Context) {
	type req struct {
		UserID   int64 `json:"user_id"`
		FriendID int64 `json:"friend_id"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	start := time.Now()
	err := relationService.DeleteFriend(c.Request.Context(), r.UserID, r.FriendID)
	middleware.RecordRelationOperation("delete_friend", "api", time.Since(start), err)
	if err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend deleted"})
}

// GetFriends - список друзей пользователя
func GetFriends(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	friends, err := relationService.GetFriends(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// GetSubscriptions - на кого подписан пользователь
func GetSubscriptions(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publishers, err := relationService.GetSubscriptions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": publishers})
}

// GetSubscribers - кто подписан на пользователя
func GetSubscribers(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	subscribers, err := relationService.GetSubscribersOf(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subscribers})
}

// ListFriendRequests - все заявки (админский эндпоинт)
func ListFriendRequests(c *gin.Context) {
	requests, err := relationService.FindAllRequests(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// DeleteFriendRequest - удаление записи заявки (админский эндпоинт)
func DeleteFriendRequest(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("request_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	if err := relationService.DeleteRequest(c.Request.Context(), requestID); err != nil {
		c.JSON(relationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request deleted"})
}

// DeleteAllFriendRequests - очистка всех заявок (админский эндпоинт)
func DeleteAllFriendRequests(c *gin.Context) {
	if err := relationService.DeleteAllRequests(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend requests deleted"})
}

// GetPendingRequests - входящие заявки в друзья
func GetPendingRequests(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	requests, err := relationService.GetPendingRequests(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
