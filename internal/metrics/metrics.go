package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics Prometheusメトリクス
type Metrics struct {
	RequestCounter       *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	FollowToggles        *prometheus.CounterVec
	NotificationsRead    prometheus.Counter
	NotificationsCleared prometheus.Counter
}

// New メトリクスを作成して reg に登録
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "social",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "social",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		FollowToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "social",
				Name:      "follow_toggles_total",
				Help:      "Follow state transitions by resulting state",
			},
			[]string{"state"},
		),
		NotificationsRead: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "social",
				Name:      "notifications_marked_read_total",
				Help:      "Notifications returned by a listing and marked read",
			},
		),
		NotificationsCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "social",
				Name:      "notifications_cleared_total",
				Help:      "Notifications deleted by recipients",
			},
		),
	}
}
