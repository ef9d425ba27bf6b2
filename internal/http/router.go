package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"gemini-relay-bot/internal/common/middleware"
	bothttp "gemini-relay-bot/internal/features/bot/delivery/http"
	historyhttp "gemini-relay-bot/internal/features/history/delivery/http"
	userhttp "gemini-relay-bot/internal/features/user/delivery/http"

	_ "gemini-relay-bot/docs"
)

type RouterConfig struct {
	Debug   bool
	Origins []string

	Bot    *bothttp.Handler
	WebApp *historyhttp.WebAppHandler
	// Admin is mounted under /debug only in debug mode, behind AdminAuth.
	Admin     *userhttp.DebugHandler
	AdminAuth []gin.HandlerFunc
}

// NewRouter builds the gin engine with middleware and every route wired.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(bothttp.WebhookPath))
	router.Use(middleware.Recovery())
	router.Use(middleware.HandleErrors())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Origins
	if len(cfg.Origins) == 0 || (len(cfg.Origins) == 1 && cfg.Origins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.InitDataHeader, "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	root := router.Group("")
	if cfg.WebApp != nil {
		cfg.WebApp.RegisterRoutes(root)
	}
	if cfg.Debug && cfg.Admin != nil {
		cfg.Admin.RegisterRoutes(router.Group("/debug", cfg.AdminAuth...))
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	cfg.Bot.RegisterRoutes(root)

	return router
}
