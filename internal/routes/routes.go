package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/civicsync/civicsync/internal/config"
	"github.com/civicsync/civicsync/internal/controllers"
	"github.com/civicsync/civicsync/internal/middleware"
	"github.com/civicsync/civicsync/internal/realtime"
	"github.com/civicsync/civicsync/internal/repository"
	"github.com/civicsync/civicsync/internal/services"
)

// SetupRoutes wires repositories, services and controllers onto the router.
// rdb may be nil, in which case issue creation is not rate limited.
func SetupRoutes(r *gin.Engine, database *gorm.DB, hub *realtime.Hub, rdb *redis.Client, cfg config.Config) {
	issueRepo := repository.NewPostgresIssueRepository(database)
	userRepo := repository.NewPostgresUserRepository(database)

	issueService := services.NewIssueService(issueRepo, hub)

	authController := controllers.NewAuthController(userRepo, cfg.JWTSecret)
	issueController := controllers.NewIssueController(issueService)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authController.Signup)
		auth.POST("/login", authController.Login)
	}

	issues := r.Group("/issues")
	issues.Use(middleware.OptionalAuth(cfg.JWTSecret))
	{
		issues.GET("", issueController.GetIssues)
		if rdb != nil && cfg.IssueLimit > 0 {
			issues.POST("", middleware.IssueRateLimiter(rdb, cfg.IssueLimit), issueController.CreateIssue)
		} else {
			issues.POST("", issueController.CreateIssue)
		}
		issues.POST("/:id/upvote", issueController.UpvoteIssue)
		issues.PUT("/:id/status", issueController.UpdateIssueStatus)
		issues.GET("/:id/updates", issueController.GetIssueUpdates)
	}

	r.GET("/ws", realtime.ServeWS(hub))
}
