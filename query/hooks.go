package query

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/theplant/admintools/filter"
)

// EnsureLimits rejects requests exceeding limits before they are compiled.
func EnsureLimits[T any](limits *filter.Limits) func(next Querier[T]) Querier[T] {
	return func(next Querier[T]) Querier[T] {
		return QuerierFunc[T](func(ctx context.Context, req *filter.Request) ([]T, error) {
			if err := filter.CheckLimits(req, limits); err != nil {
				return nil, err
			}
			return next.Query(ctx, req)
		})
	}
}

// WithLogger logs every query of collection at debug level and failures at warn level.
func WithLogger[T any](logger *zap.Logger, collection string) func(next Querier[T]) Querier[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("collection", collection))
	return func(next Querier[T]) Querier[T] {
		return QuerierFunc[T](func(ctx context.Context, req *filter.Request) ([]T, error) {
			start := time.Now()
			records, err := next.Query(ctx, req)
			fields := []zap.Field{
				zap.Int("filters", len(req.Active())),
				zap.Duration("elapsed", time.Since(start)),
			}
			if err != nil {
				logger.Warn("query failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			logger.Debug("query", append(fields, zap.Int("records", len(records)))...)
			return records, nil
		})
	}
}

const (
	OutcomeOK             = "ok"
	OutcomeInvalidFilter  = "invalid_filter"
	OutcomeExecutionError = "execution_error"
)

// Metrics counts queries per collection and outcome.
type Metrics struct {
	Queries  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admintools",
			Name:      "queries_total",
			Help:      "Number of filtered queries by collection and outcome.",
		}, []string{"collection", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "admintools",
			Name:      "query_duration_seconds",
			Help:      "Duration of filtered queries by collection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
	}
	if reg != nil {
		reg.MustRegister(m.Queries, m.Duration)
	}
	return m
}

func WithMetrics[T any](m *Metrics, collection string) func(next Querier[T]) Querier[T] {
	return func(next Querier[T]) Querier[T] {
		if m == nil {
			return next
		}
		return QuerierFunc[T](func(ctx context.Context, req *filter.Request) ([]T, error) {
			timer := prometheus.NewTimer(m.Duration.WithLabelValues(collection))
			records, err := next.Query(ctx, req)
			timer.ObserveDuration()

			outcome := OutcomeOK
			switch {
			case filter.IsInvalidFilter(err):
				outcome = OutcomeInvalidFilter
			case err != nil:
				outcome = OutcomeExecutionError
			}
			m.Queries.WithLabelValues(collection, outcome).Inc()
			return records, err
		})
	}
}
