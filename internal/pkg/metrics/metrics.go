package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wallet_core"

var (
	RequestsHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_requests",
			Help:      "Time taken by requests to node, indexer and metadata backends",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"client", "method", "error"},
	)

	RegistryBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_builds_total",
			Help:      "Client set builds by network and outcome",
		},
		[]string{"network", "error"},
	)

	RegistryPublishes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_publishes_total",
			Help:      "Client sets published as the active generation",
		},
	)

	ActiveNetwork = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_network",
			Help:      "Set to 1 for the network of the active client set",
		}, []string{"network"},
	)
)

func CollectRequestsMetric(client, method string, err error, start time.Time) {
	RequestsHistogram.
		WithLabelValues(client, method, errLabelValue(err)).
		Observe(time.Since(start).Seconds())
}

func CollectRegistryBuild(network string, err error) {
	RegistryBuilds.WithLabelValues(network, errLabelValue(err)).Inc()
}

// CollectPublish records a published generation and moves the active-network gauge.
func CollectPublish(previous, current string) {
	RegistryPublishes.Inc()
	if previous != "" && previous != current {
		ActiveNetwork.WithLabelValues(previous).Set(0)
	}
	ActiveNetwork.WithLabelValues(current).Set(1)
}

func errLabelValue(err error) string {
	if err != nil {
		return "true"
	}
	return "false"
}
