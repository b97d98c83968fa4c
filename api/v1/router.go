package v1

import (
	"watchtower/api/v1/clusters"
	"watchtower/api/v1/middleware"
	"watchtower/api/v1/nodes"
	"watchtower/internal/httpx"
	"watchtower/internal/inventory"
	"watchtower/internal/metrics"
	"watchtower/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Options configures the engine built by NewEngine
type Options struct {
	Logger      *logrus.Entry
	Metrics     *metrics.PrometheusMetrics
	CORSOrigins []string
}

// NewEngine builds the gin engine with middleware, fallbacks and routes
func NewEngine(service *inventory.Service, opts Options) *gin.Engine {
	validator.Setup()

	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.Logger(logger.WithField("component", "http")))
	r.Use(middleware.Recovery())
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(opts.CORSOrigins))
	}
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		httpx.FailErr(c, httpx.ErrNotFound(""))
	})
	r.NoMethod(func(c *gin.Context) {
		httpx.FailErr(c, httpx.ErrMethodNotAllowed())
	})

	SetupRouter(r, service)

	return r
}

// SetupRouter sets up the /api routes
func SetupRouter(r *gin.Engine, service *inventory.Service) {
	api := r.Group("/api")
	{
		api.GET("/ping", pingHandler)

		clustersHandler := clusters.NewHandler(service)
		clustersGroup := api.Group("/clusters")
		{
			clustersGroup.GET("", clustersHandler.List)
			clustersGroup.POST("", clustersHandler.Create)
			clustersGroup.GET("/:cluster_id", clustersHandler.Get)
			clustersGroup.DELETE("/:cluster_id", clustersHandler.Delete)
		}

		nodesHandler := nodes.NewHandler(service)
		nodesGroup := api.Group("/nodes")
		{
			nodesGroup.GET("", nodesHandler.List)
			nodesGroup.POST("", nodesHandler.Create)
			nodesGroup.GET("/:node_id", nodesHandler.Get)
			nodesGroup.PUT("/:node_id", nodesHandler.Update)
			nodesGroup.DELETE("/:node_id", nodesHandler.Delete)
		}
	}
}

// pingHandler handles the liveness probe
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}
