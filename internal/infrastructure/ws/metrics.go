package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_ws_connected_clients",
		Help: "Live sessions currently registered with the hub",
	})

	broadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_ws_broadcasts_total",
		Help: "Invalidation notice broadcasts attempted",
	})
)

func init() {
	prometheus.MustRegister(connectedClients)
	prometheus.MustRegister(broadcastsTotal)
}
