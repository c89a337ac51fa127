package router

import (
	"myCampaignEngine/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetBanditRoutes(api *echo.Group, handler *rest.BanditHandler) {
	decisions := api.Group("/decisions")
	decisions.POST("", handler.Decide)
	decisions.GET("/debug", handler.DebugDecide)
	decisions.POST("/:id/outcome", handler.ReportOutcome)
}

func SetMetricsRoutes(api *echo.Group, handler *rest.MetricsHandler) {
	m := api.Group("/metrics")
	m.GET("/summary", handler.Summary)
	m.GET("/learning-curve", handler.LearningCurve)
	m.GET("/leaderboard", handler.Leaderboard)
}

func SetBanditAdminRoutes(api *echo.Group, handler *rest.BanditAdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin", authRequired, adminOnly)

	admin.DELETE("/beliefs", handler.ResetBelief)
	admin.POST("/catalog/refresh", handler.RefreshCatalog)
}
