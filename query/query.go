package query

import (
	"context"

	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/internal/hook"
)

// Fetcher reads the records of one collection matching a compiled predicate.
// Implementations must not mutate the collection.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, pred *filter.Compiled) ([]T, error)
}

type FetcherFunc[T any] func(ctx context.Context, pred *filter.Compiled) ([]T, error)

func (f FetcherFunc[T]) Fetch(ctx context.Context, pred *filter.Compiled) ([]T, error) {
	return f(ctx, pred)
}

type Querier[T any] interface {
	Query(ctx context.Context, req *filter.Request) ([]T, error)
}

type QuerierFunc[T any] func(ctx context.Context, req *filter.Request) ([]T, error)

func (f QuerierFunc[T]) Query(ctx context.Context, req *filter.Request) ([]T, error) {
	return f(ctx, req)
}

// New returns a Querier that compiles each request against schema and hands the result to fetcher.
//
// Invalid requests fail with *filter.InvalidFilterError before fetcher is called.
// Fetch failures are returned as *filter.QueryExecutionError. An empty match is an empty, non-nil slice.
func New[T any](schema *filter.Schema, fetcher Fetcher[T], hooks ...func(next Querier[T]) Querier[T]) Querier[T] {
	if schema == nil {
		panic("schema must be set")
	}
	if fetcher == nil {
		panic("fetcher must be set")
	}

	var q Querier[T] = QuerierFunc[T](func(ctx context.Context, req *filter.Request) ([]T, error) {
		pred, err := filter.Compile(schema, req)
		if err != nil {
			return nil, err
		}
		records, err := fetcher.Fetch(ctx, pred)
		if err != nil {
			if filter.IsQueryExecution(err) {
				return nil, err
			}
			return nil, &filter.QueryExecutionError{Collection: schema.Collection, Err: err}
		}
		if records == nil {
			records = []T{}
		}
		return records, nil
	})

	h := hook.Chain(hooks...)
	if h != nil {
		q = h(q)
	}
	return q
}
