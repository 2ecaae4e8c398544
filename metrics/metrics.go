package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP 请求指标
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of requests",
		},
		[]string{"service", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)

	// 业务指标
	PapersUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papers_uploaded_total",
			Help: "Total number of papers uploaded",
		},
	)

	PaperDownloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_downloads_total",
			Help: "Total number of paper downloads",
		},
		[]string{"charge"},
	)

	TicketsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_granted_total",
			Help: "Total number of download tickets granted",
		},
		[]string{"reason"},
	)

	// 实时连接指标
	WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of realtime events published",
		},
		[]string{"sink", "event", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		PapersUploaded,
		PaperDownloads,
		TicketsGranted,
		WebsocketClients,
		EventsPublished,
	)
}

// StartMetricsServer 启动独立的 metrics HTTP 服务器
func StartMetricsServer(port string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, nil); err != nil {
			panic("failed to start metrics server: " + err.Error())
		}
	}()
}

// RecordRequest 记录请求指标的助手函数
func RecordRequest(service, method, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(service, method, status).Inc()
	RequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}
