package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EmailsSent tracks delivery attempts by template and outcome
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_service_sent_total",
			Help: "Total number of email delivery attempts",
		},
		[]string{"template", "status"},
	)

	// SendDuration tracks per-message delivery duration
	SendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_service_send_duration_seconds",
			Help:    "Email delivery duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"template"},
	)

	// BulkBatchSize tracks the size of accepted bulk batches after deduplication
	BulkBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "email_service_bulk_batch_size",
			Help:    "Recipients per accepted bulk send after deduplication",
			Buckets: []float64{1, 5, 10, 20, 30, 40, 50},
		},
	)

	// RateLimitExceeded tracks request rejections by limiter bucket
	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_service_rate_limit_exceeded_total",
			Help: "Total number of rate limit exceeded events",
		},
		[]string{"bucket"},
	)

	// QuotaRejected tracks sends refused by the hourly/daily ceilings
	QuotaRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_service_quota_rejected_total",
			Help: "Total number of requests refused by send quotas",
		},
		[]string{"window"},
	)

	// DisposableRejected tracks requests refused by the disposable-domain filter
	DisposableRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_service_disposable_rejected_total",
			Help: "Total number of requests refused for disposable recipient domains",
		},
	)

	// SMTPConnections tracks pooled SMTP connections currently idle
	SMTPConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "email_service_smtp_connections",
			Help: "Number of idle SMTP connections in the pool",
		},
	)
)
