package routes

import (
	"hypertodo/internal/adapter/http/handler"
	"hypertodo/internal/adapter/http/middleware"
	"hypertodo/internal/core/telemetry"
	"hypertodo/pkg/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

type Dependencies struct {
	Config  *config.AppConfig
	Logger  *config.Logger
	Metrics *telemetry.AppMetrics
}

type TodoHandlers struct {
	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler
}

type CounterHandlers struct {
	CounterHandler *handler.CounterHandler
	HealthHandler  *handler.HealthHandler
}

func newRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = config.NewNopLogger()
	}

	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	if err := router.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		deps.Logger.Error("Invalid trusted proxies, forwarded headers are ignored", zap.Error(err))
		router.SetTrustedProxies(nil)
	}

	router.Use(middleware.Recovery(deps.Logger))

	if enforcer := middleware.NewHTTPSEnforcer(deps.Logger, deps.Config.EnforceHTTPS); enforcer.IsEnabled() {
		router.Use(enforcer.HTTPSMiddleware())
	}

	router.Use(otelgin.Middleware(deps.Config.ServiceName))
	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.LoggingMiddleware(deps.Logger))

	if deps.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(deps.Metrics))
	}

	if deps.Config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(deps.Logger, deps.Metrics, deps.Config.RateLimitConfigs)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	router.Use(middleware.ErrorHandler(deps.Logger))
	router.Use(middleware.Timeout(deps.Config.RequestTimeout))

	return router
}

// SetupTodoRouter wires the todo demo routes.
func SetupTodoRouter(h TodoHandlers, deps Dependencies) *gin.Engine {
	router := newRouter(deps)

	router.GET("/", h.TodoHandler.Index)
	router.POST("/add_todo", h.TodoHandler.AddTodo)
	router.PATCH("/todo/:id", h.TodoHandler.ToggleTodo)
	router.DELETE("/todo/:id", h.TodoHandler.DeleteTodo)
	router.GET("/healthz", h.HealthHandler.Health)

	return router
}

// SetupCounterRouter wires the counter demo routes.
func SetupCounterRouter(h CounterHandlers, deps Dependencies) *gin.Engine {
	router := newRouter(deps)

	router.GET("/", h.CounterHandler.Index)
	router.POST("/counter", h.CounterHandler.Increment)
	router.GET("/healthz", h.HealthHandler.Health)

	return router
}
