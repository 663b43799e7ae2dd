package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_messages_dispatched_total",
		Help: "Messages persisted by the dispatcher.",
	})
	MessagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_messages_delivered_total",
		Help: "Messages pushed to a live receiver connection.",
	})
	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dm_open_connections",
		Help: "Currently registered websocket connections.",
	})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
