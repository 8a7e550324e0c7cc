package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts persistence traffic. Each gateway registers its own set on
// the registerer it is given, so tests can use a fresh registry.
type Metrics struct {
	Saves        *prometheus.CounterVec
	RemoteErrors *prometheus.CounterVec
	Snapshots    prometheus.Counter
	Seeds        prometheus.Counter
	Fallbacks    prometheus.Counter
	SaveDuration *prometheus.HistogramVec
	RemoteActive prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Saves: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streakd_saves_total",
				Help: "Total number of state saves",
			},
			[]string{"mode"}, // local, remote
		),
		RemoteErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streakd_remote_errors_total",
				Help: "Total number of failed remote operations",
			},
			[]string{"op"},
		),
		Snapshots: f.NewCounter(prometheus.CounterOpts{
			Name: "streakd_remote_snapshots_total",
			Help: "Total number of remote snapshots applied",
		}),
		Seeds: f.NewCounter(prometheus.CounterOpts{
			Name: "streakd_remote_seeds_total",
			Help: "Total number of times the remote tree was seeded from local state",
		}),
		Fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "streakd_remote_fallbacks_total",
			Help: "Total number of switches back to local storage after a listener failure",
		}),
		SaveDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "streakd_save_duration_seconds",
				Help:    "Duration of state saves",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"mode"},
		),
		RemoteActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "streakd_remote_active",
			Help: "1 while the remote store is the source of truth",
		}),
	}
}
