package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/config"
	"github.com/polkiloo/courieragent/internal/metrics"
	"github.com/polkiloo/courieragent/internal/server/http/handlers"
	"github.com/polkiloo/courieragent/internal/server/http/middleware"
	"github.com/polkiloo/courieragent/internal/server/ws"
)

// Params holds the router dependencies.
type Params struct {
	fx.In

	Facade  handlers.CourierFacade
	Hub     *ws.Hub
	Metrics *metrics.Metrics
	Config  *config.Config
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(p.Metrics.Middleware())
	engine.Use(middleware.CORS(p.Config.CORSOrigins))
	engine.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics"}),
		gzip.WithDecompressFn(gzip.DefaultDecompressHandle),
	))

	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	sessionHandler := handlers.NewSessionHandler(p.Facade)
	driverHandler := handlers.NewDriverHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	streamHandler := handlers.NewStreamHandler(p.Hub, p.Facade, p.Logger)
	notificationHandler := handlers.NewNotificationHandler(p.Facade)
	walletHandler := handlers.NewWalletHandler(p.Facade)

	api := engine.Group("/api")
	api.POST("/session", sessionHandler.SignIn)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(p.Facade))

	authed.GET("/driver", driverHandler.Profile)
	authed.POST("/driver", driverHandler.Register)
	authed.PUT("/driver", driverHandler.Update)
	authed.POST("/driver/status", driverHandler.SetStatus)
	authed.GET("/driver/location", driverHandler.Location)
	authed.POST("/location", driverHandler.ReportLocation)

	authed.GET("/orders/current", orderHandler.Current)
	authed.POST("/orders/:id/open", orderHandler.Open)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.GET("/orders/:id/stream", streamHandler.Order)
	authed.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
	authed.POST("/orders/:id/confirm", orderHandler.Confirm)
	authed.DELETE("/orders/:id", orderHandler.Close)

	authed.GET("/feed", streamHandler.Feed)
	authed.POST("/notifications", notificationHandler.Push)
	authed.DELETE("/notifications/:id", notificationHandler.Dismiss)

	authed.GET("/wallet", walletHandler.Wallet)
	authed.GET("/wallet/transactions", walletHandler.Transactions)
	authed.POST("/wallet/topup", walletHandler.TopUp)
	authed.GET("/deliveries", walletHandler.Deliveries)
	authed.GET("/deliveries/income", walletHandler.Income)
	authed.GET("/device-tokens", walletHandler.DeviceTokens)
	authed.POST("/device-tokens", walletHandler.RegisterDeviceToken)

	return engine
}
