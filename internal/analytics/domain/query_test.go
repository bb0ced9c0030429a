package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/privmetrics/internal/privacy/noise"
)

func TestQueryRequestValidate(t *testing.T) {
	valid := QueryRequest{
		Scope:     "org-1",
		Metric:    MetricSum,
		Property:  "amount",
		Epsilon:   0.5,
		Mechanism: noise.MechanismLaplace,
		ClampMin:  0,
		ClampMax:  100,
	}

	tests := []struct {
		name    string
		mutate  func(q *QueryRequest)
		wantErr error
	}{
		{"Valid", func(q *QueryRequest) {}, nil},
		{"CountWithoutProperty", func(q *QueryRequest) { q.Metric = MetricCount; q.Property = "" }, nil},
		{"MissingScope", func(q *QueryRequest) { q.Scope = "" }, ErrScopeRequired},
		{"UnknownMetric", func(q *QueryRequest) { q.Metric = "median" }, ErrInvalidMetric},
		{"SumWithoutProperty", func(q *QueryRequest) { q.Property = "" }, ErrPropertyRequired},
		{"EmptyClampInterval", func(q *QueryRequest) { q.ClampMax = q.ClampMin }, ErrInvalidClampBounds},
		{"InfiniteClampBound", func(q *QueryRequest) { q.ClampMax = math.Inf(1) }, ErrInvalidClampBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestQueryRequestSensitivity(t *testing.T) {
	count := QueryRequest{Metric: MetricCount}
	assert.Equal(t, 1.0, count.Sensitivity())

	sum := QueryRequest{Metric: MetricSum, ClampMin: -50, ClampMax: 10}
	assert.Equal(t, 50.0, sum.Sensitivity())
}

func TestQueryRequestClamp(t *testing.T) {
	q := QueryRequest{ClampMin: 0, ClampMax: 100}

	assert.Equal(t, 0.0, q.Clamp(-5))
	assert.Equal(t, 42.0, q.Clamp(42))
	assert.Equal(t, 100.0, q.Clamp(250))
}
