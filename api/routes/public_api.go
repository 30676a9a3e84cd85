package routes

import (
	"socialmedia/api/handlers"
	"socialmedia/api/middleware"

	"github.com/gin-gonic/gin"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	publicEndpoints := router.Group("/api/v1/")
	{
		publicEndpoints.POST("auth/register", handlers.Register)
		publicEndpoints.POST("auth/login", handlers.Login)

		publicEndpoints.GET("user/get/:id", handlers.UserGet)
		publicEndpoints.GET("user/edges/:id", handlers.UserGetWithEdges)
		publicEndpoints.DELETE("user/:id", handlers.UserDelete)

		// Подписки
		publicEndpoints.POST("subscriptions/subscribe", handlers.Subscribe)
		publicEndpoints.POST("subscriptions/unsubscribe", handlers.Unsubscribe)

		// Заявки в друзья и дружба
		publicEndpoints.POST("friends/request", handlers.SendFriendRequest)
		publicEndpoints.POST("friends/accept", handlers.AcceptFriendRequest)
		publicEndpoints.POST("friends/reject", handlers.RejectFriendRequest)
		publicEndpoints.POST("friends/delete", handlers.DeleteFriend)

		// Посты
		publicEndpoints.GET("posts/by-author/:user_id", handlers.GetPostsByAuthor)
		publicEndpoints.GET("posts/range", handlers.GetPostsByRange)
		publicEndpoints.POST("posts/by-users", handlers.GetUserPosts)
		publicEndpoints.GET("feed/global", handlers.GetGlobalFeed)
	}
	return publicEndpoints
}

func PrivateApi(router *gin.Engine) *gin.RouterGroup {
	privateEndpoints := router.Group("/api/v1/")
	privateEndpoints.Use(middleware.AuthMiddleware())
	{
		privateEndpoints.POST("auth/logout", handlers.Logout)

		privateEndpoints.GET("friends/list", handlers.GetFriends)
		privateEndpoints.GET("friends/requests", handlers.GetPendingRequests)
		privateEndpoints.GET("subscriptions/list", handlers.GetSubscriptions)
		privateEndpoints.GET("subscriptions/subscribers", handlers.GetSubscribers)

		privateEndpoints.POST("posts/create", handlers.CreatePost)
		privateEndpoints.PUT("posts/:post_id", handlers.UpdatePost)
		privateEndpoints.DELETE("posts/:post_id", handlers.DeletePost)
		privateEndpoints.GET("feed", handlers.GetFeed)

		privateEndpoints.POST("messages/send", handlers.SendMessage)
		privateEndpoints.GET("messages/dialog/:user_id", handlers.GetDialog)

		privateEndpoints.GET("ws/feed", handlers.WSFeedHandler)
	}
	return privateEndpoints
}

func AdminApi(router *gin.Engine) *gin.RouterGroup {
	adminEndpoints := router.Group("/api/v1/admin/")
	{
		adminEndpoints.POST("feed/invalidate/:user_id", handlers.InvalidateUserFeed)
		adminEndpoints.POST("feed/rebuild/:user_id", handlers.RebuildUserFeed)
		adminEndpoints.POST("feed/rebuild-all", handlers.RebuildAllFeeds)
		adminEndpoints.GET("queue/stats", handlers.GetQueueStats)

		adminEndpoints.GET("friend-requests", handlers.ListFriendRequests)
		adminEndpoints.DELETE("friend-requests/:request_id", handlers.DeleteFriendRequest)
		adminEndpoints.DELETE("friend-requests", handlers.DeleteAllFriendRequests)
	}
	return adminEndpoints
}
