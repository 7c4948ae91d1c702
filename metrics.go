package main

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once

	broadcastsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poster_broadcasts_total",
			Help: "Number of broadcast runs executed.",
		},
	)

	postsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_posts_sent_total",
			Help: "Posts delivered per delivery kind.",
		},
		[]string{"kind"},
	)

	postsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_posts_failed_total",
			Help: "Posts that failed to deliver per delivery kind.",
		},
		[]string{"kind"},
	)

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_commands_total",
			Help: "Owner commands handled per command.",
		},
		[]string{"command"},
	)

	unauthorizedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poster_unauthorized_commands_total",
			Help: "Commands rejected because the sender is not an owner.",
		},
	)
)

// registerMetrics registers all collectors with Prometheus exactly once.
func registerMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(
			broadcastsTotal,
			postsSent,
			postsFailed,
			commandsTotal,
			unauthorizedTotal,
		)
	})
}
