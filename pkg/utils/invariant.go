// Invariants are conditions the code relies on being true; a violation means
// a bug, not an environmental failure. A Violation names one such condition
// and Raise is what you reach for where you'd otherwise panic: it records an
// error log and bumps a counter monitoring can alert on, while the caller
// stays responsible for handling the erroneous case (early return, clamp to
// a sane value, and so on). Under test builds a raise panics so bugs surface
// immediately.
//
// Do not raise violations for conditions driven by external factors; a
// failed network read is not a code bug. A value another piece of our code
// should never have produced is.

package utils

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "loquat_invariants_total",
	Help: "The total number of invariant violations",
}, []string{
	"module", // The module in which this invariant occurred.
	"type",   // The type of the invariant that occurred.
})

// Violation identifies one class of invariant breach: the module it lives in
// and a stable slug the metric and the logs key on.
type Violation struct {
	Module string
	Type   string
}

// Raise records the violation. The extra args are slog key-value pairs
// carrying the offending values.
func (v Violation) Raise(msg string, args ...any) {
	invariantsMetric.WithLabelValues(v.Module, v.Type).Inc()
	slog.Error(msg, append([]any{"module", v.Module, "invariant", v.Type}, args...)...)
	if IsTestMode {
		panic(fmt.Sprintf("invariant violated: %s/%s", v.Module, v.Type))
	}
}

// Count returns how many times this violation has been raised so far.
func (v Violation) Count() int {
	metric := new(promclient.Metric)
	if err := invariantsMetric.WithLabelValues(v.Module, v.Type).Write(metric); err != nil {
		slog.Error("Failed to read the invariant counter.", "error", err)
		return 0
	}
	return int(metric.Counter.GetValue())
}
