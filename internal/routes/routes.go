package routes

import (
	"github.com/gin-gonic/gin"

	"stagegate/internal/authz"
	"stagegate/internal/handlers"
	"stagegate/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	projectHandler *handlers.ProjectHandler,
	reviewHandler *handlers.ReviewHandler,
	redFlagHandler *handlers.RedFlagHandler,
	notificationHandler *handlers.NotificationHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/register", userHandler.Register)
	r.POST("/password/forgot", authHandler.ForgotPassword)
	r.POST("/password/reset", authHandler.ResetPassword)

	// ---- protected
	r.Use(middleware.AuthMiddleware())
	r.Use(middleware.ReadOnlyGuard())

	// USERS
	users := r.Group("/users")
	{
		users.POST("/", userHandler.CreateUser)
		users.GET("/count", userHandler.GetUserCount)
		users.GET("/count/role/:role_id", userHandler.GetUserCountByRole)
		users.GET("/", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUserByID)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	// PROJECTS
	projects := r.Group("/projects")
	{
		projects.POST("/", projectHandler.Create)
		projects.GET("/", projectHandler.List)
		projects.GET("/:id", projectHandler.GetByID)
		projects.PUT("/:id", projectHandler.Update)
		projects.DELETE("/:id", projectHandler.Delete)
		projects.POST("/:id/status", projectHandler.OverrideStatus)

		projects.GET("/:id/members", projectHandler.ListMembers)
		projects.POST("/:id/members", projectHandler.AddMember)
		projects.DELETE("/:id/members/:user_id", projectHandler.RemoveMember)

		projects.GET("/:id/activity", projectHandler.ListActivity)

		// gate reviews
		projects.GET("/:id/reviews", reviewHandler.ListForProject)
		projects.POST("/:id/reviews", reviewHandler.Start)
		projects.POST("/:id/reviews/assign", reviewHandler.Assign)
		projects.POST("/:id/gate/decide", reviewHandler.Decide)

		// red flags
		projects.GET("/:id/flags", redFlagHandler.ListByProject)
		projects.POST("/:id/flags", redFlagHandler.Raise)
	}

	// REVIEWS (reviewer's own rows)
	reviews := r.Group("/reviews")
	{
		reviews.GET("/", reviewHandler.ListMine)
		reviews.PUT("/:id/draft", reviewHandler.SaveDraft)
		reviews.POST("/:id/complete", reviewHandler.Complete)
	}

	// RED FLAGS
	r.POST("/flags/:flag_id/resolve", redFlagHandler.Resolve)

	// NOTIFICATIONS
	notifications := r.Group("/notifications")
	{
		notifications.GET("/", notificationHandler.ListMine)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
	}

	// REPORTS (auditor/gatekeeper/portfolio/admin)
	reports := r.Group("/reports",
		middleware.RequireRoles(authz.RoleAuditor, authz.RoleGatekeeper, authz.RolePortfolio, authz.RoleAdmin),
	)
	{
		reports.GET("/summary", reportHandler.GetSummary)
		reports.GET("/projects/filter", reportHandler.FilterProjects)
		reports.GET("/portfolio/pdf", reportHandler.PortfolioPDF)
	}

	return r
}
