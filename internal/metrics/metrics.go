package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/snowflake"
)

const namespace = "idservice"

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Registry holds the service collectors. A nil *Registry records nothing.
type Registry struct {
	issued   *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// New registers the request collectors on reg.
func New(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		issued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ids_issued_total",
			Help:      "Total number of identifiers issued",
		}, []string{"type"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of id requests by operation and outcome",
		}, []string{"operation", "type", "outcome"}),
	}
}

// ObserveSnowflake exposes the generator's own counters.
func ObserveSnowflake(reg prometheus.Registerer, gen *snowflake.Generator) {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"machine_id": strconv.FormatInt(gen.MachineID(), 10)}
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "snowflake",
		Name:        "generated_total",
		Help:        "Snowflake ids produced by the generator",
		ConstLabels: labels,
	}, func() float64 { return float64(gen.Stats().Generated) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "snowflake",
		Name:        "sequence_exhausted_total",
		Help:        "Times the per-millisecond sequence ran out and the generator waited for the next millisecond",
		ConstLabels: labels,
	}, func() float64 { return float64(gen.Stats().SequenceExhausted) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "snowflake",
		Name:        "clock_regressions_total",
		Help:        "Clock samples observed behind the last used timestamp",
		ConstLabels: labels,
	}, func() float64 { return float64(gen.Stats().ClockRegressions) })
}

// Issued counts n identifiers of kind.
func (r *Registry) Issued(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.issued.WithLabelValues(kind).Add(float64(n))
}

// Request counts one operation call.
func (r *Registry) Request(operation, kind, outcome string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(operation, kind, outcome).Inc()
}
