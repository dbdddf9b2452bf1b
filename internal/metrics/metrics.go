package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every textrpg collector plus the Go runtime collectors
var Registry = prometheus.NewRegistry()

var (
	ChoicesApplied = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "textrpg_choices_applied_total",
		Help: "Total number of story choices applied.",
	})

	DanglingNodes = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "textrpg_dangling_nodes_total",
		Help: "Total number of traversals to a node id missing from the story.",
	})

	ItemsUsed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "textrpg_items_used_total",
			Help: "Total number of item use attempts by outcome.",
		},
		[]string{"outcome"}, // consumed, no_effect, not_held, not_usable
	)

	Saves = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "textrpg_saves_total",
			Help: "Total number of save attempts by result.",
		},
		[]string{"result"},
	)

	Loads = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "textrpg_loads_total",
			Help: "Total number of load attempts by result.",
		},
		[]string{"result"}, // ok, no_save, invalid, error
	)

	WSClients = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "textrpg_ws_clients",
		Help: "Number of connected websocket clients.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
