package domain

import (
	"math"
	"time"

	"github.com/allisson/privmetrics/internal/privacy/noise"
)

// MetricKind identifies the aggregate a query computes.
type MetricKind string

const (
	// MetricCount counts matching events. Per-event sensitivity is 1.
	MetricCount MetricKind = "count"

	// MetricSum sums a numeric property over matching events. Contributions
	// are clamped into [ClampMin, ClampMax] before summing.
	MetricSum MetricKind = "sum"

	// MetricAvg averages a numeric property over matching events, computed as
	// a noisy sum divided by a noisy count with the budget split between them.
	MetricAvg MetricKind = "avg"
)

// IsValid reports whether the metric kind is supported.
func (m MetricKind) IsValid() bool {
	switch m {
	case MetricCount, MetricSum, MetricAvg:
		return true
	default:
		return false
	}
}

// NeedsProperty reports whether the metric aggregates over a named property.
func (m MetricKind) NeedsProperty() bool {
	return m == MetricSum || m == MetricAvg
}

// QueryRequest describes a requested differentially private aggregate.
//
// ClampMin/ClampMax bound each event's contribution for sum and avg metrics.
// Clamping happens here in the aggregation layer because the bounds determine
// the sensitivity the noise is calibrated for.
type QueryRequest struct {
	Scope     string
	Metric    MetricKind
	Property  string
	Filters   map[string]string
	Epsilon   float64
	Delta     float64
	Mechanism noise.MechanismKind
	ClampMin  float64
	ClampMax  float64
}

// Validate checks the request's structural rules. Mechanism-specific
// epsilon/delta constraints are enforced by the mechanism itself before any
// randomness is drawn.
func (q *QueryRequest) Validate() error {
	if q.Scope == "" {
		return ErrScopeRequired
	}
	if !q.Metric.IsValid() {
		return ErrInvalidMetric
	}
	if q.Metric.NeedsProperty() {
		if q.Property == "" {
			return ErrPropertyRequired
		}
		if math.IsNaN(q.ClampMin) || math.IsNaN(q.ClampMax) ||
			math.IsInf(q.ClampMin, 0) || math.IsInf(q.ClampMax, 0) ||
			q.ClampMax <= q.ClampMin {
			return ErrInvalidClampBounds
		}
	}
	return nil
}

// Sensitivity returns the per-event L1/L2 sensitivity the noise must cover
// for the metric. Avg queries derive their sensitivity per sub-aggregate.
func (q *QueryRequest) Sensitivity() float64 {
	switch q.Metric {
	case MetricSum:
		return math.Max(math.Abs(q.ClampMin), math.Abs(q.ClampMax))
	default:
		return 1
	}
}

// Clamp bounds a single event's contribution for sum and avg metrics.
func (q *QueryRequest) Clamp(value float64) float64 {
	if value < q.ClampMin {
		return q.ClampMin
	}
	if value > q.ClampMax {
		return q.ClampMax
	}
	return value
}

// QueryResult is the outcome of a query. A denied admission is a normal
// result: Denied is set, no value is computed and nothing is charged.
type QueryResult struct {
	Value            float64
	Denied           bool
	EpsilonCharged   float64
	DeltaCharged     float64
	RemainingEpsilon float64
	RemainingDelta   float64
	WindowStart      time.Time
}
