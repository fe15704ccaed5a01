package handler

import (
	"net/http"

	"socialhub/backend/internal/auth"
	"socialhub/backend/internal/logging"
	"socialhub/backend/internal/metrics"
	"socialhub/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires every route. authLimiter throttles the /auth endpoints.
func NewRouter(h *Handler, tokens *jwt.Manager, authLimiter *auth.RateLimiter, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logging.Middleware(log), metrics.Middleware())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		authRoutes := apiV1.Group("/auth")
		authRoutes.Use(authLimiter.Middleware())
		{
			authRoutes.POST("/register", h.Register)
			authRoutes.POST("/login", h.Login)
			authRoutes.POST("/token/refresh", h.RefreshToken)
		}

		protected := apiV1.Group("")
		protected.Use(auth.Middleware(tokens))

		userRoutes := protected.Group("/users")
		{
			userRoutes.GET("/me", h.GetMe)
			userRoutes.PATCH("/me", h.UpdateMe)
		}

		friendRoutes := protected.Group("/friends")
		{
			friendRoutes.GET("", h.ListFriends)
			friendRoutes.GET("/search", h.SearchUsers)
			friendRoutes.GET("/requests", h.ListFriendRequests)
			friendRoutes.POST("/requests", h.SendFriendRequest)
			friendRoutes.GET("/requests/:id", h.GetFriendRequest)
			friendRoutes.DELETE("/requests/:id", h.CancelFriendRequest)
			friendRoutes.POST("/requests/:id/respond", h.RespondFriendRequest)
			friendRoutes.DELETE("/:userId", h.Unfriend)
		}

		groupRoutes := protected.Group("/groups")
		{
			groupRoutes.GET("", h.ListGroups)
			groupRoutes.POST("", h.CreateGroup)
			groupRoutes.GET("/:id", h.GetGroup)
			groupRoutes.GET("/:id/members", h.ListGroupMembers)
			groupRoutes.DELETE("/:id/members/:userId", h.RemoveGroupMember)
			groupRoutes.POST("/:id/join", h.JoinGroup)
			groupRoutes.POST("/:id/leave", h.LeaveGroup)
			groupRoutes.GET("/:id/posts", h.ListGroupPosts)
			groupRoutes.POST("/:id/posts", h.CreateGroupPost)
		}

		postRoutes := protected.Group("/posts")
		{
			postRoutes.GET("", h.Feed)
			postRoutes.POST("", h.CreatePost)
			postRoutes.GET("/:id", h.GetPost)
			postRoutes.PATCH("/:id", h.UpdatePost)
			postRoutes.DELETE("/:id", h.DeletePost)
			postRoutes.POST("/:id/like", h.ToggleLike)
			postRoutes.GET("/:id/comments", h.ListComments)
			postRoutes.POST("/:id/comments", h.CreateComment)
		}

		commentRoutes := protected.Group("/comments")
		{
			commentRoutes.GET("/:id", h.GetComment)
			commentRoutes.PATCH("/:id", h.UpdateComment)
			commentRoutes.DELETE("/:id", h.DeleteComment)
		}
	}

	return router
}
