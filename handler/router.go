package handler

import (
	"accountability/middleware"
	"accountability/service"
	"accountability/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Services is everything the HTTP layer talks to.
type Services struct {
	Users       *service.UserService
	Follow      *service.FollowService
	Buddy       *service.BuddyService
	Circle      *service.CircleService
	Leaderboard *service.LeaderboardService
	Feed        *service.FeedService
	Activity    *service.ActivityService
	Admins      *service.AdminPolicy
}

// NewRouter wires middleware and routes. A nil limiter disables rate limiting.
func NewRouter(svc Services, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{"status": "ok"})
	})

	followHandler := NewFollowHandler(svc.Follow)
	buddyHandler := NewBuddyHandler(svc.Buddy)
	circleHandler := NewCircleHandler(svc.Circle, svc.Leaderboard)
	feedHandler := NewFeedHandler(svc.Feed)
	activityHandler := NewActivityHandler(svc.Activity)
	adminHandler := NewAdminHandler(svc.Users)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware())
	if limiter != nil {
		api.Use(limiter.Middleware())
	}
	{
		// follow graph
		api.POST("/follow/:user_id", followHandler.Follow)
		api.DELETE("/follow/:user_id", followHandler.Unfollow)
		api.GET("/followings", followHandler.GetFollowings)
		api.GET("/followers", followHandler.GetFollowers)

		// buddy handshake; :id is the target user on send, the request otherwise
		api.POST("/buddy/request/:id", buddyHandler.SendRequest)
		api.POST("/buddy/request/:id/accept", buddyHandler.AcceptRequest)
		api.POST("/buddy/request/:id/decline", buddyHandler.DeclineRequest)
		api.GET("/buddy/requests/received", buddyHandler.GetReceivedRequests)
		api.GET("/buddy/requests/sent", buddyHandler.GetSentRequests)
		api.GET("/buddy/list", buddyHandler.GetBuddies)
		api.DELETE("/buddy/:user_id/remove", buddyHandler.RemoveBuddy)

		// circles
		api.POST("/circle", circleHandler.CreateCircle)
		api.GET("/circles", circleHandler.GetMyCircles)
		api.GET("/circle/:id", circleHandler.GetCircle)
		api.PUT("/circle/:id", circleHandler.UpdateCircle)
		api.DELETE("/circle/:id", circleHandler.DeleteCircle)
		api.POST("/circle/:id/users", circleHandler.AddMember)
		api.DELETE("/circle/:id/users", circleHandler.RemoveMember)
		api.GET("/circle/:id/users", circleHandler.GetMembers)
		api.GET("/circle/:id/leaderboard", circleHandler.GetLeaderboard)

		// feed
		api.GET("/feed", feedHandler.Feed(service.ScopeAll))
		api.GET("/feed/following", feedHandler.Feed(service.ScopeFollowing))
		api.GET("/feed/circles", feedHandler.Feed(service.ScopeCircles))

		// activity
		api.POST("/goals", activityHandler.CreateGoal)
		api.POST("/check-ins", activityHandler.CreateCheckIn)
	}

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminOnly(svc.Admins))
	{
		admin.POST("/users", adminHandler.CreateUser)
		admin.GET("/users/:id", adminHandler.GetUser)
	}

	return r
}
