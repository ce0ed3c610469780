// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ffmpeg_api_http_requests_total",
		Help: "Total number of HTTP requests by path and status code.",
	}, []string{"path", "code"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ffmpeg_api_http_request_duration_seconds",
		Help:    "HTTP request latency by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	RequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ffmpeg_api_http_requests_in_flight",
		Help: "Number of HTTP requests currently being served.",
	})

	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ffmpeg_api_jobs_total",
		Help: "Total number of assembly jobs by terminal status.",
	}, []string{"status"})

	JobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ffmpeg_api_jobs_in_flight",
		Help: "Number of assembly jobs currently processing.",
	})

	TranscodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ffmpeg_api_transcodes_total",
		Help: "Total number of ffmpeg invocations by outcome.",
	}, []string{"outcome"})

	TranscodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ffmpeg_api_transcode_duration_seconds",
		Help:    "Wall-clock duration of ffmpeg invocations.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ffmpeg_api_download_bytes_total",
		Help: "Total bytes downloaded from clip sources.",
	})

	WebhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ffmpeg_api_webhooks_total",
		Help: "Total number of completion webhook deliveries by outcome.",
	}, []string{"outcome"})
)
