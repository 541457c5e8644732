package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradematch_backend/internal/auth"
	"tradematch_backend/internal/handlers"
	"tradematch_backend/internal/middleware"
	"tradematch_backend/internal/models"
)

// SetupRoutes wires the full HTTP surface. Search is public; everything
// else sits behind the bearer-token middleware, and the admin delete behind
// the admin role guard on top.
func SetupRoutes(router *gin.Engine, h *handlers.HandlerContainer, tokens *auth.TokenManager) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	api.GET("/search/jobs", h.Search.Jobs)
	api.GET("/search/tradespeople", h.Search.Tradespeople)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(tokens))
	{
		authed.GET("/auth/me", h.Auth.Me)

		authed.GET("/jobs", h.Jobs.List)
		authed.GET("/jobs/open", h.Jobs.Open)
		authed.GET("/jobs/recent", h.Jobs.Recent)
		authed.GET("/jobs/mine", h.Jobs.Mine)
		authed.GET("/jobs/:id", h.Jobs.Get)
		authed.PATCH("/jobs/:id", h.Jobs.Update)

		authed.POST("/jobs", middleware.RequireRoles(models.UserRoleCustomer), h.Jobs.Create)
		authed.POST("/jobs/:id/payments", middleware.RequireRoles(models.UserRoleCustomer), h.Jobs.RecordPayment)
		authed.POST("/jobs/:id/cancel", middleware.RequireRoles(models.UserRoleCustomer), h.Jobs.Cancel)
		authed.POST("/jobs/:id/complete", middleware.RequireRoles(models.UserRoleTradesperson), h.Jobs.Complete)

		authed.POST("/jobs/:id/quotes", middleware.RequireRoles(models.UserRoleTradesperson), h.Quotes.Create)
		authed.GET("/jobs/:id/quotes", h.Quotes.ListForJob)
		authed.POST("/jobs/:id/quotes/:quoteId/accept", middleware.RequireRoles(models.UserRoleCustomer), h.Quotes.Accept)

		authed.GET("/notifications", h.Notifications.List)
		authed.POST("/notifications/read-all", h.Notifications.MarkAllRead)
		authed.POST("/notifications/:id/read", h.Notifications.MarkRead)
		authed.GET("/notifications/unread-count", h.Notifications.UnreadCount)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.DELETE("/jobs/:id", h.Jobs.AdminDelete)
	}
}
