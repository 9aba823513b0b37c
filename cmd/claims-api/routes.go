package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/claims-api/internal/handler"
	internalmiddleware "github.com/noah-isme/claims-api/internal/middleware"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/service"
	"github.com/noah-isme/claims-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/claims-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/claims-api/pkg/middleware/requestid"
)

type routerDeps struct {
	apiPrefix      string
	allowedOrigins []string
	exports        bool
	docs           gin.HandlerFunc

	logger  *zap.Logger
	metrics *service.MetricsService
	auth    *service.AuthService
	actors  *service.ActorService

	claims    *handler.ClaimHandler
	summaries *handler.SummaryHandler
	ops       *handler.MetricsHandler
}

func newRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.logger))
	r.Use(corsmiddleware.New(deps.allowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.metrics))

	r.GET("/health", deps.ops.Health)
	r.GET("/ready", deps.ops.Ready)
	r.GET("/metrics", deps.ops.Prometheus)
	if deps.docs != nil {
		r.GET("/docs/*any", deps.docs)
	}

	processors := []models.UserRole{models.RoleCoordinator, models.RoleStaffRegistry, models.RoleRegistry}

	api := r.Group(deps.apiPrefix)
	api.Use(internalmiddleware.JWT(deps.auth, deps.actors))

	claims := api.Group("/claims")
	claims.POST("", internalmiddleware.RequireRoles(models.RoleLecturer), deps.claims.Submit)
	claims.GET("", deps.claims.List)
	claims.GET("/:id", deps.claims.Get)
	claims.POST("/:id/process", internalmiddleware.RequireRoles(processors...), deps.claims.Process)
	claims.DELETE("/:id", internalmiddleware.RequireRoles(models.RoleRegistry), deps.claims.Delete)

	summaries := api.Group("/summaries")
	summaries.GET("/lecturers/:lecturerId", deps.summaries.Lecturer)
	summaries.GET("/centers", deps.summaries.Centers)
	if deps.exports {
		summaries.GET("/lecturers/:lecturerId/export", deps.summaries.ExportLecturer)
		summaries.GET("/centers/export", deps.summaries.ExportCenters)
	}

	return r
}
