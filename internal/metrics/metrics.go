package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodmap_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"method", "route", "status"})
	HTTPDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodmap_http_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	GeocodeRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "foodmap_geocode_requests_total",
		Help: "Total geocoding REST attempts",
	})
	GeocodeSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "foodmap_geocode_success_total",
		Help: "Total geocoding lookups that returned a candidate",
	})
	GeocodeFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "foodmap_geocode_fail_total",
		Help: "Total geocoding lookups that failed after retries",
	})
	GeocodeDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodmap_geocode_duration_ms",
		Help:    "Geocoding REST call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	GeocodeCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "foodmap_geocode_cache_hits_total",
		Help: "Total geocode cache hits",
	})
	GeocodeCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "foodmap_geocode_cache_misses_total",
		Help: "Total geocode cache misses",
	})
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodmap_user_reports_total",
		Help: "Total user reports by type",
	}, []string{"type"})
	VerificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "foodmap_verifications_total",
		Help: "Total manual verifications",
	})
	SubmissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "foodmap_submissions_total",
		Help: "Total accepted submissions",
	})
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodmap_notifications_total",
		Help: "Submission notifications by outcome",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPDurationMs)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeSuccessTotal)
	prometheus.MustRegister(GeocodeFailTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(GeocodeCacheHitsTotal)
	prometheus.MustRegister(GeocodeCacheMissesTotal)
	prometheus.MustRegister(ReportsTotal)
	prometheus.MustRegister(VerificationsTotal)
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(NotificationsTotal)
}

// Handler 返回 Prometheus 指标处理器，挂载在 /metrics
func Handler() http.Handler { return promhttp.Handler() }

// GinMiddleware 按路由模板统计请求数与耗时，未匹配路由归为 unmatched 以控制标签基数
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}
