package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	custommiddleware "botdash/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	Auth                *custommiddleware.Auth
	Log                 *logrus.Entry
	AuthHandler         *AuthHandler
	BotHandler          *BotHandler
	AccountHandler      *AccountHandler
	SignalHandler       *SignalHandler
	SubscriptionHandler *SubscriptionHandler
	SettingsHandler     *SettingsHandler
	AdminHandler        *AdminHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	log := config.Log.WithField("component", "http")
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Status polling would drown the log
			path := c.Request().URL.Path
			return path == "/health" || path == "/api/admin/sync/status"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("Request")
				return nil
			}
			entry.Info("Request")
			return nil
		},
	}))
	// A panicking handler gets a 500 envelope; the server keeps serving
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.WithError(err).WithField("path", c.Path()).Error("Recovered from panic")
			return err
		},
	}))
	e.Use(middleware.CORS())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":    "healthy",
			"service":   "botdash-api",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// API group (protected with identity provider tokens)
	api := e.Group("/api", config.Auth.Middleware)

	api.GET("/auth/me", config.AuthHandler.Me)

	bots := api.Group("/bots")
	{
		bots.GET("", config.BotHandler.List)
		bots.POST("", config.BotHandler.Create)
		bots.GET("/:id", config.BotHandler.Get)
		bots.PUT("/:id", config.BotHandler.Update)
		bots.PUT("/:id/status", config.BotHandler.SetStatus)
		bots.DELETE("/:id", config.BotHandler.Delete)
	}

	accounts := api.Group("/accounts")
	{
		accounts.GET("", config.AccountHandler.List)
		accounts.POST("", config.AccountHandler.Create)
		accounts.GET("/tree", config.AccountHandler.Tree)
		accounts.GET("/credentials", config.AccountHandler.Credentials)
		accounts.POST("/credentials", config.AccountHandler.AddCredential)
		accounts.GET("/:id", config.AccountHandler.Get)
		accounts.PUT("/:id", config.AccountHandler.Update)
		accounts.DELETE("/:id", config.AccountHandler.Delete)
	}

	api.GET("/signals", config.SignalHandler.List)
	api.GET("/signals/:id", config.SignalHandler.Get)

	api.GET("/subscriptions/me", config.SubscriptionHandler.Me)
	api.GET("/packages", config.SubscriptionHandler.Packages)

	api.GET("/settings", config.SettingsHandler.Get)
	api.PUT("/settings", config.SettingsHandler.Replace)
	api.PATCH("/settings", config.SettingsHandler.Patch)

	// Admin routes
	admin := api.Group("/admin", custommiddleware.AdminMiddleware)
	{
		admin.GET("/users", config.AdminHandler.GetUsers)
		admin.GET("/statistics", config.AdminHandler.GetStatistics)
		admin.GET("/accounts/tree", config.AdminHandler.GetAccountTree)
		admin.POST("/signals", config.AdminHandler.RecordSignal)
		admin.GET("/subscriptions", config.AdminHandler.GetSubscriptions)
		admin.POST("/subscriptions", config.AdminHandler.CreateSubscription)
		admin.POST("/subscriptions/:id/cancel", config.AdminHandler.CancelSubscription)
		admin.POST("/sync/accounts", config.AdminHandler.TriggerAccountSync)
		admin.GET("/sync/status", config.AdminHandler.GetSyncStatus)
	}
}
