package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/internal/handlers"
	"github.com/trackline-dev/trackline/internal/middleware"
	"github.com/trackline-dev/trackline/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/token", handlers.Login)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		// Invitation redemption is public: the guest has no account yet.
		api.GET("/invite/:token", handlers.GetInvitation)
		api.POST("/invite/:token/accept-login", handlers.AcceptInvitation)

		activities := api.Group("/activities", middleware.AuthMiddleware())
		{
			activities.POST("", handlers.CreateActivity)
			activities.GET("", handlers.ListActivities)
			activities.GET("/due", handlers.GetDueActivities)
			activities.POST("/due/send-reminders", handlers.SendDueReminders)
			activities.GET("/export/csv", handlers.ExportActivitiesCSV)
			activities.PATCH("/:activity_id", handlers.UpdateActivity)
			activities.DELETE("/:activity_id", middleware.RequireAdmin(), handlers.DeleteActivity)
			activities.GET("/:activity_id/history", handlers.GetActivityHistory)

			activities.POST("/:activity_id/subtasks", handlers.CreateSubtask)
			activities.GET("/:activity_id/subtasks", handlers.ListSubtasks)
			activities.PATCH("/:activity_id/subtasks/:subtask_id", handlers.UpdateSubtask)
			activities.DELETE("/:activity_id/subtasks/:subtask_id", handlers.DeleteSubtask)

			activities.POST("/:activity_id/files", handlers.UploadActivityFile)
			activities.GET("/:activity_id/files", handlers.ListActivityFiles)
			activities.GET("/:activity_id/files/:file_id", handlers.DownloadActivityFile)
			activities.DELETE("/:activity_id/files/:file_id", handlers.DeleteActivityFile)

			activities.POST("/:activity_id/invite", handlers.CreateInvitation)
			activities.GET("/:activity_id/invitations", handlers.ListInvitations)
			activities.POST("/:activity_id/assign", middleware.RequireAdmin(), handlers.AssignActivity)
		}

		webhooks := api.Group("/webhooks", middleware.AuthMiddleware())
		{
			webhooks.POST("", handlers.CreateWebhook)
			webhooks.GET("", handlers.ListWebhooks)
			webhooks.DELETE("/:webhook_id", handlers.DeleteWebhook)
		}

		api.GET("/collaborators", middleware.AuthMiddleware(), middleware.RequireAdmin(), handlers.ListCollaborators)
		api.GET("/dashboard/weekly", middleware.AuthMiddleware(), middleware.RequireAdmin(), handlers.GetWeeklyDashboard)

		admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.RequireAdmin())
		{
			admin.PATCH("/users/:user_id/role", handlers.UpdateUserRole)
			admin.DELETE("/users/:user_id", handlers.DeleteUser)
			admin.POST("/admin-users", handlers.CreateAdminUser)
		}
	}

	return r
}
