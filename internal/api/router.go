// Package api exposes the questionnaire, entitlement and checkout flows over HTTP.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"KYCrypto/internal/entitlement"
	"KYCrypto/internal/logging"
	"KYCrypto/internal/metrics"
	"KYCrypto/internal/model"
	"KYCrypto/internal/payment"
	"KYCrypto/internal/wizard"
)

// Recommender produces a portfolio for validated answers.
type Recommender interface {
	Acquire(ctx context.Context, answers model.QuestionnaireAnswers) model.Portfolio
}

// MarketClock reports the age of the cached market data.
type MarketClock interface {
	FetchedAt() time.Time
}

// RouterConfig aggregates the dependencies of the route tree.
type RouterConfig struct {
	Recommender Recommender
	Entitlement entitlement.Store
	Payments    *payment.Controller
	Surfaces    *payment.RemoteOpener
	Market      MarketClock
	// Wizard is optional; its routes are registered only when set.
	Wizard  *wizard.Session
	Metrics *metrics.Metrics
	Logger  logging.Logger
	Version string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(cfg.Logger.Named("http")))

	h := &handlers{cfg: cfg, startAt: time.Now()}

	r.GET("/api/health", h.health)
	r.POST("/api/recommendation", h.recommendation)
	r.GET("/api/entitlement", h.entitlementStatus)
	r.POST("/api/checkout", h.checkout)
	r.POST("/api/checkout/closed", h.checkoutClosed)
	r.GET("/payment/return", h.paymentReturn)

	if cfg.Wizard != nil {
		registerWizard(r, cfg.Wizard)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}
	return r
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("latency", time.Since(start)))
	}
}
