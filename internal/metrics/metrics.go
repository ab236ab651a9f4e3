package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all Episteme metrics
const namespace = "episteme"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// HealthCheckStatus tracks individual health check results.
// Values: 0 = fail, 1 = pass
var HealthCheckStatus = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "health_check_status",
		Help:      "Individual health check status (0=fail, 1=pass)",
	},
	[]string{"check"},
)

// EventsAppended counts committed event appends by event type.
var EventsAppended = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_appended_total",
		Help:      "Total number of events appended to case streams",
	},
	[]string{"event_type"},
)

// AppendRejections counts append attempts that failed, labeled by error code.
var AppendRejections = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_append_rejections_total",
		Help:      "Total number of rejected event appends by error code",
	},
	[]string{"code"},
)

// GateResolutions counts bearer token resolutions by outcome.
var GateResolutions = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_resolutions_total",
		Help:      "Total number of bearer token resolutions",
	},
	[]string{"outcome"}, // outcome: principal|anonymous
)

// StreamSubscribers tracks currently connected live stream clients.
var StreamSubscribers = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Current number of connected event stream subscribers",
	},
)

// EmbeddingRequests counts calls to the external embedding service.
var EmbeddingRequests = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_requests_total",
		Help:      "Total number of embedding service requests",
	},
	[]string{"status"}, // status: success|error
)

// EmbeddingLatency tracks embedding service request latency.
var EmbeddingLatency = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "embedding_latency_seconds",
		Help:      "Embedding service request latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
)

// SearchQueries counts semantic search requests.
var SearchQueries = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_queries_total",
		Help:      "Total number of semantic search queries",
	},
)

// BriefRecomputes counts brief recomputations by result.
var BriefRecomputes = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "brief_recomputes_total",
		Help:      "Total number of brief recomputations",
	},
	[]string{"result"}, // result: success|error
)

// Init registers runtime collectors and sets version information.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
