package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	promhandler "github.com/jwalitptl/shc-api/internal/handler/prometheus"
	"github.com/jwalitptl/shc-api/internal/middleware"
	"github.com/jwalitptl/shc-api/pkg/httputil"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	config   RouterConfig
	metrics  *promhandler.Handler
	health   Handler
	handlers []Handler
}

type RouterConfig struct {
	// RateLimit of zero disables rate limiting.
	RateLimit      rate.Limit
	RateBurst      int
	CORSConfig     middleware.CORSConfig
	SizeLimit      middleware.SizeLimitConfig
	SecurityConfig middleware.SecurityConfig
	// MetricsPath is where the scrape endpoint is mounted; empty disables it.
	MetricsPath string
}

// NewRouter builds the engine with the middleware chain every request goes
// through. metrics may be nil.
func NewRouter(config RouterConfig, metrics *promhandler.Handler, health Handler, handlers ...Handler) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		config:   config,
		metrics:  metrics,
		health:   health,
		handlers: handlers,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
	)
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}
	engine.Use(
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(config.SecurityConfig),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(config.SizeLimit),
	)

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	engine.NoRoute(func(c *gin.Context) {
		httputil.Abort(c, http.StatusNotFound, "route not found")
	})

	return r
}

func (r *Router) Setup() {
	if r.metrics != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.metrics.Handler())
	}

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	if r.health != nil {
		r.health.RegisterRoutes(api)
	}
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
