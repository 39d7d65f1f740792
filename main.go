package main

import (
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bookmark_manager/auth"
	"bookmark_manager/config"
	"bookmark_manager/database"
	"bookmark_manager/handlers"
	"bookmark_manager/logger"
	"bookmark_manager/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.PrettyLog)
	defer log.Sync()

	auth.Init(cfg)
	handlers.Init(cfg)
	database.Connect(cfg)

	registerValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	registerRoutes(router)

	zap.S().Infof("bookmark manager starting on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		zap.S().Fatalf("failed to start server: %v", err)
	}
}

func registerRoutes(router *gin.Engine) {
	router.POST("/api/register", handlers.Register)
	router.POST("/api/login", handlers.Login)

	router.GET("/bookmarks", handlers.ListBookmarks)
	router.GET("/bookmarks/:year/:month/:day/:slug", handlers.BookmarkDetail)
	router.GET("/tags/:name/bookmarks", handlers.BookmarksByTag)
	router.GET("/export/:model", handlers.ExportModel)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/add", handlers.ShowAddForm)
		api.POST("/add", handlers.AddBookmark)
		api.GET("/bookmarks/mine", handlers.ListMyBookmarks)
		api.GET("/instances/:id/edit", handlers.ShowEditForm)
		api.POST("/instances/:id/edit", handlers.EditInstance)
		api.POST("/instances/:id/delete", handlers.DeleteInstance)
	}
}

// registerValidations adds the bookmarkurl validation used by the add form:
// an absolute http or https URL with a host.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("bookmarkurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})
}
