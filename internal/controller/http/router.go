package http

import (
	"paygate/internal/controller/http/handlers"
	"paygate/pkg/health"
	"paygate/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	checkout       *handlers.CheckoutHandler
	providers      *handlers.ProvidersHandler
	healthRegistry *health.Registry
}

func (r *Router) SetUp(engine *gin.Engine) {
	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(r.healthRegistry, health.DefaultTimeout))

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := engine.Group("/v1")
	v1.POST("/checkout/sessions", r.checkout.Create)
	v1.GET("/checkout/sessions", r.checkout.List)
	v1.GET("/checkout/sessions/:reference", r.checkout.Get)
	v1.GET("/providers", r.providers.List)
}

func NewRouter(
	checkout *handlers.CheckoutHandler,
	providers *handlers.ProvidersHandler,
	healthRegistry *health.Registry,
) *Router {
	return &Router{
		checkout:       checkout,
		providers:      providers,
		healthRegistry: healthRegistry,
	}
}
