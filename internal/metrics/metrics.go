package metrics

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"watchtower/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PrometheusMetrics struct {
	logger        *logrus.Entry
	registry      *prometheus.Registry
	db            *gorm.DB
	clusterMetric prometheus.Gauge
	nodeMetric    *prometheus.GaugeVec
	requestMetric *prometheus.CounterVec
	taskMetric    *prometheus.CounterVec
}

type PrometheusMetricsOption func(*PrometheusMetrics)

func WithLogger(logger *logrus.Entry) PrometheusMetricsOption {
	return func(m *PrometheusMetrics) {
		m.logger = logger
	}
}

func WithPrometheusRegistry(registry *prometheus.Registry) PrometheusMetricsOption {
	return func(m *PrometheusMetrics) {
		m.registry = registry
	}
}

func WithDatabase(db *gorm.DB) PrometheusMetricsOption {
	return func(m *PrometheusMetrics) {
		m.db = db
	}
}

func NewPrometheusMetrics(prometheusMetricsOptions ...PrometheusMetricsOption) (*PrometheusMetrics, error) {
	clusterMetric := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchtower_clusters",
			Help: "Number of clusters in the inventory.",
		},
	)

	nodeMetric := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchtower_nodes",
			Help: "Number of nodes per cluster.",
		},
		[]string{
			"cluster",
		},
	)

	requestMetric := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchtower_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{
			"method",
			"route",
			"code",
		},
	)

	taskMetric := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchtower_tasks_processed_total",
			Help: "Tasks processed by the worker, by task name and final status.",
		},
		[]string{
			"task",
			"status",
		},
	)

	m := PrometheusMetrics{
		logger:        logrus.NewEntry(logrus.StandardLogger()),
		registry:      prometheus.NewRegistry(),
		clusterMetric: clusterMetric,
		nodeMetric:    nodeMetric,
		requestMetric: requestMetric,
		taskMetric:    taskMetric,
	}

	for _, prometheusMetricsOption := range prometheusMetricsOptions {
		prometheusMetricsOption(&m)
	}

	collectors := []prometheus.Collector{
		m.clusterMetric,
		m.nodeMetric,
		m.requestMetric,
		m.taskMetric,
	}
	for _, collector := range collectors {
		if err := m.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if ok {
		buildMetric := prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watchtower_build_info",
			},
			[]string{
				"goversion",
				"revision",
			},
		)

		revision := "(unknown)"
		for _, setting := range buildInfo.Settings {
			if setting.Key == "vcs.revision" {
				revision = setting.Value
			}
		}

		labels := prometheus.Labels{
			"goversion": buildInfo.GoVersion,
			"revision":  revision,
		}

		buildMetric.With(labels).Inc()

		m.registry.MustRegister(buildMetric)
	}

	return &m, nil
}

// Registry returns the underlying registry
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest counts one served HTTP request
func (m *PrometheusMetrics) ObserveRequest(method, route string, code int) {
	m.requestMetric.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// ObserveTask counts one processed task
func (m *PrometheusMetrics) ObserveTask(name, status string) {
	m.taskMetric.WithLabelValues(name, status).Inc()
}

type clusterCount struct {
	Name  string
	Nodes int64
}

// CollectMetrics refreshes the inventory gauges from the database
func (m *PrometheusMetrics) CollectMetrics(ctx context.Context) error {
	if m.db == nil {
		return nil
	}

	m.logger.Trace("collecting prometheus metrics")

	var counts []clusterCount
	err := m.db.WithContext(ctx).
		Model(&model.Cluster{}).
		Select("clusters.name AS name, COUNT(nodes.id) AS nodes").
		Joins("LEFT JOIN nodes ON nodes.cluster_id = clusters.id").
		Group("clusters.id, clusters.name").
		Scan(&counts).Error
	if err != nil {
		m.logger.WithError(err).Error("error counting nodes per cluster")
		return err
	}

	m.clusterMetric.Set(float64(len(counts)))

	m.nodeMetric.Reset()
	for _, count := range counts {
		m.nodeMetric.WithLabelValues(count.Name).Set(float64(count.Nodes))
	}

	return nil
}

// RunCollector calls CollectMetrics every interval until ctx is done
func (m *PrometheusMetrics) RunCollector(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	_ = m.CollectMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Metrics collector stopped")
			return
		case <-ticker.C:
			_ = m.CollectMetrics(ctx)
		}
	}
}
