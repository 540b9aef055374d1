package web

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendancelist/internal/httpmiddleware"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Options configures NewRouter.
type Options struct {
	CORSOrigins []string
	// ExportLimit throttles the export route per client; nil disables it.
	ExportLimit *httpmiddleware.TokenBucket
	Checks      map[string]HealthCheck
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.AccessLog("/healthz", "/metrics"))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	r.Use(httpmiddleware.SecurityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", health(opts.Checks))

	r.GET("/", h.Start)
	r.GET("/attendance/:id", h.AttendancePage)

	v1 := r.Group("/v1/sessions")
	v1.POST("", h.CreateSession)
	v1.GET("/:id", h.GetSession)
	v1.GET("/:id/records", h.ListRecords)

	exportChain := []gin.HandlerFunc{}
	if opts.ExportLimit != nil {
		exportChain = append(exportChain, opts.ExportLimit.GinMiddleware())
	}
	v1.GET("/:id/export", append(exportChain, h.Export)...)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		status := http.StatusOK
		for name, check := range checks {
			ok := check(c.Request.Context())
			body[name] = ok
			if !ok {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		c.JSON(status, body)
	}
}
