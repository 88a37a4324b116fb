package main

import (
	"document-archive/internal/archive"
	"document-archive/internal/config"
	"document-archive/internal/document"
	"document-archive/internal/middleware"
	"document-archive/internal/request"
	"document-archive/internal/user"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func newRouter(cfg *config.Config, logger *zap.Logger, svc *services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if svc.metrics != nil {
		router.Use(svc.metrics.Middleware())
	}
	router.Use(middleware.ErrorHandler(logger))

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader, document.RequesterEmailHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
	}
	if cfg.IsProduction() {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	docHandler := document.NewHandler(svc.documents, cfg.MaxUploadMB)
	requestHandler := request.NewHandler(svc.requests)
	userHandler := user.NewHandler(svc.users)
	archiveHandler := archive.NewHandler(svc.archive)
	authMiddleware := &middleware.Auth{UserService: svc.users, Signer: svc.signer}

	api := router.Group("/api")

	// public routes
	api.GET("/documents", docHandler.List)
	api.GET("/documents/search", docHandler.Search)
	api.GET("/documents/category-counts", docHandler.CategoryCounts)
	api.GET("/documents/:id", docHandler.Show)
	api.GET("/documents/:id/access", requestHandler.CheckAccess)
	api.POST("/document-requests", requestHandler.Create)

	authed := api.Group("", authMiddleware.AuthMiddleWare())
	authed.GET("/me", userHandler.GetProfile)
	authed.POST("/logout", userHandler.Logout)

	admin := authed.Group("", middleware.RequireAdmin())
	admin.POST("/documents", docHandler.Upload)
	admin.POST("/documents/reindex", docHandler.Reindex)
	admin.POST("/compiled-documents", docHandler.CreateCompiled)
	admin.GET("/document-requests", requestHandler.List)
	admin.PATCH("/document-requests/:id", requestHandler.Review)
	archiveHandler.RegisterRoutes(admin.Group("/archives"))

	return router
}
