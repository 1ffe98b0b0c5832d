// Package metrics collects conversion and HTTP statistics. Conversion
// counters are exported through Prometheus; HTTP statistics are served as
// JSON by the server.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
)

const namespace = "jsregex"

// Rejection reasons used as the reason label of rejected_total.
const (
	ReasonTooLarge = "too_large"
	ReasonTooDeep  = "too_deep"
	ReasonInvalid  = "invalid_document"
)

type Recorder struct {
	ConversionsTotal     *prometheus.CounterVec
	WarningsTotal        *prometheus.CounterVec
	SyntheticGroupsTotal prometheus.Counter
	RejectedTotal        *prometheus.CounterVec
	ConversionDuration   prometheus.Histogram
}

// NewRecorder creates the conversion metrics and registers them, together
// with the Go runtime and process collectors, on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Number of converted trees by target",
			},
			[]string{"target"},
		),
		WarningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "warnings_total",
				Help:      "Conversion warnings by kind",
			},
			[]string{"kind"},
		),
		SyntheticGroupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthetic_groups_total",
			Help:      "Capturing groups added by atomic group and possessive emulation",
		}),
		RejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejected_total",
				Help:      "Trees refused before conversion by reason",
			},
			[]string{"reason"},
		),
		ConversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time spent converting one tree",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
	}

	for _, c := range []prometheus.Collector{
		r.ConversionsTotal,
		r.WarningsTotal,
		r.SyntheticGroupsTotal,
		r.RejectedTotal,
		r.ConversionDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveConversion records one finished conversion. A nil recorder is a
// no-op so the engine can run without metrics.
func (r *Recorder) ObserveConversion(target converter.Target, result converter.Result, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.ConversionsTotal.WithLabelValues(target.String()).Inc()
	r.SyntheticGroupsTotal.Add(float64(result.SyntheticGroups))
	r.ConversionDuration.Observe(elapsed.Seconds())
	for _, w := range result.Warnings {
		r.WarningsTotal.WithLabelValues(w.Kind.String()).Inc()
	}
}

func (r *Recorder) ObserveRejection(reason string) {
	if r == nil {
		return
	}
	r.RejectedTotal.WithLabelValues(reason).Inc()
}
