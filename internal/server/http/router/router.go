package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/heartframe/internal/config"
	"github.com/polkiloo/heartframe/internal/server/http/handlers"
	"github.com/polkiloo/heartframe/internal/server/http/middleware"
)

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade handlers.HeartFrameFacade
	Config *config.Config
	Logger *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	// zero RateLimitRPS disables the limiter
	var limiter *middleware.IPRateLimiter
	if p.Config.RateLimitRPS > 0 {
		limiter = middleware.NewIPRateLimiter(p.Config.RateLimitRPS, p.Config.RateLimitBurst)
	}

	generateHandler := handlers.NewGenerateHandler(p.Facade)
	fileHandler := handlers.NewFileHandler(p.Facade)
	paymentHandler := handlers.NewPaymentHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	api := engine.Group("/api")
	api.GET("/generate", generateHandler.Status)
	api.GET("/file", fileHandler.Get)
	api.GET("/health", healthHandler.Check)
	api.POST("/webhook", paymentHandler.Webhook)

	limited := api.Group("")
	limited.Use(middleware.RateLimit(limiter))
	limited.POST("/generate", generateHandler.Submit)
	limited.POST("/payment", paymentHandler.Create)

	return engine
}
