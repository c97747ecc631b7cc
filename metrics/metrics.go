// Package metrics counts bindings calls in a Prometheus registry: calls per
// operation and outcome, failed native statuses, argument check failures and
// call latency.
package metrics

import (
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/tsawler/go-clhost/bindings"
	"github.com/tsawler/go-clhost/marshal"
)

const namespace = "clhost"

// Outcome labels besides the marshal error kinds.
const (
	OutcomeOK      = "ok"
	OutcomeUnknown = "unknown_operation"
	OutcomeOther   = "error"
)

// Collector implements bindings.Observer.
type Collector struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	statuses *prometheus.CounterVec
	guard    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var _ bindings.Observer = (*Collector)(nil)

// New creates a collector with its own registry, so several modules in one
// process never collide on registration.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Bindings calls by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		statuses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "native_status_errors_total",
				Help:      "Failed native statuses by operation and status name",
			},
			[]string{"op", "status"},
		),
		guard: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "argument_errors_total",
				Help:      "Calls rejected before reaching the driver, by error kind",
			},
			[]string{"kind"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Bindings call latency",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"op"},
		),
	}
	c.registry.MustRegister(c.calls, c.statuses, c.guard, c.latency)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Outcome classifies a call error into the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, bindings.ErrUnknownOperation):
		return OutcomeUnknown
	}
	if kind, ok := marshal.KindOf(err); ok {
		return string(kind)
	}
	return OutcomeOther
}

// ObserveCall records one finished call.
func (c *Collector) ObserveCall(rec bindings.CallRecord) {
	outcome := Outcome(rec.Err)
	c.calls.WithLabelValues(rec.Op, outcome).Inc()
	c.latency.WithLabelValues(rec.Op).Observe(rec.Duration.Seconds())

	var serr *marshal.StatusError
	switch {
	case errors.As(rec.Err, &serr):
		c.statuses.WithLabelValues(rec.Op, serr.Code.Name()).Inc()
	case outcome != OutcomeOK && outcome != OutcomeUnknown && outcome != OutcomeOther:
		c.guard.WithLabelValues(outcome).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteText encodes every metric family as text.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	encoder := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Calls returns the call count for op and outcome.
func (c *Collector) Calls(op, outcome string) float64 {
	return counterValue(c.calls.WithLabelValues(op, outcome))
}

// StatusErrors returns the failed status count for op and a status name
// such as "CL_INVALID_KERNEL_NAME".
func (c *Collector) StatusErrors(op, status string) float64 {
	return counterValue(c.statuses.WithLabelValues(op, status))
}

// ArgumentErrors returns the rejected call count for an error kind.
func (c *Collector) ArgumentErrors(kind marshal.ErrorKind) float64 {
	return counterValue(c.guard.WithLabelValues(string(kind)))
}

func counterValue(m prometheus.Counter) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return 0
	}
	return out.GetCounter().GetValue()
}
