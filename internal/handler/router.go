package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	pkglog "github.com/weiawesome/wes-io-live/snowflake-service/pkg/log"
)

// RouterOptions configures NewRouter. A nil Metrics handler disables the
// metrics route.
type RouterOptions struct {
	Logger      zerolog.Logger
	Metrics     http.Handler
	MetricsPath string
}

// NewRouter builds the gin engine with logging, health, metrics and API routes.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(opts.Logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.Metrics))
	}

	h.RegisterRoutes(r)
	return r
}
