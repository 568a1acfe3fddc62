// Package memfilter evaluates compiled filters against in-memory records.
package memfilter

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sunfmin/reflectutils"

	"github.com/theplant/admintools/filter"
)

// Predicate reports whether a record satisfies every condition of a compiled filter.
type Predicate[T any] func(record T) bool

// Compile turns pred into a Predicate. An empty pred matches every record.
func Compile[T any](pred *filter.Compiled) (Predicate[T], error) {
	if pred.Empty() {
		return func(T) bool { return true }, nil
	}

	tests := make([]func(record any) bool, 0, len(pred.Conditions))
	for _, cond := range pred.Conditions {
		test, err := compileCondition(cond)
		if err != nil {
			return nil, err
		}
		tests = append(tests, test)
	}

	return func(record T) bool {
		for _, test := range tests {
			if !test(record) {
				return false
			}
		}
		return true
	}, nil
}

// Filter returns the records matching pred, in their original order.
// items is not modified.
func Filter[T any](items []T, pred *filter.Compiled) ([]T, error) {
	match, err := Compile[T](pred)
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(items))
	for _, item := range items {
		if match(item) {
			result = append(result, item)
		}
	}
	return result, nil
}

// Collection is a read-only in-memory backend for query.New.
type Collection[T any] struct {
	Items []T
}

func NewCollection[T any](items []T) *Collection[T] {
	return &Collection[T]{Items: items}
}

func (c *Collection[T]) Fetch(ctx context.Context, pred *filter.Compiled) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "fetch")
	}
	return Filter(c.Items, pred)
}

func compileCondition(cond *filter.Condition) (func(record any) bool, error) {
	field := cond.Field
	get := field.Accessor
	if get == nil {
		if field.Path == "" {
			return nil, errors.Errorf("field %q has neither Path nor Accessor", field.Name)
		}
		path := field.Path
		get = func(record any) (any, bool) {
			v, err := reflectutils.Get(record, path)
			if err != nil {
				return nil, false
			}
			return v, true
		}
	}

	switch field.Type {
	case filter.TypeString, filter.TypeID:
		want := textOf(cond.Value)
		return func(record any) bool {
			v, ok := value(get, record)
			if !ok {
				return false
			}
			got := textOf(v)
			if cond.Operator == filter.OpStartsWith {
				return strings.HasPrefix(got, want)
			}
			if field.Type == filter.TypeID {
				return sameID(got, want)
			}
			return got == want
		}, nil

	case filter.TypeInt:
		want := cond.Value.(int64)
		return func(record any) bool {
			v, ok := value(get, record)
			if !ok {
				return false
			}
			got, err := filter.ToInt(v)
			if err != nil {
				return false
			}
			return compare(got, want, cond.Operator)
		}, nil

	case filter.TypeFloat:
		want := cond.Value.(float64)
		return func(record any) bool {
			v, ok := value(get, record)
			if !ok {
				return false
			}
			got, err := filter.ToFloat(v)
			if err != nil {
				return false
			}
			return compare(got, want, cond.Operator)
		}, nil

	case filter.TypeTime:
		want, err := epoch(cond.Value)
		if err != nil {
			return nil, err
		}
		return func(record any) bool {
			v, ok := value(get, record)
			if !ok {
				return false
			}
			got, err := epoch(v)
			if err != nil {
				return false
			}
			return compare(got, want, cond.Operator)
		}, nil
	}
	return nil, errors.Errorf("unsupported field type %q", field.Type)
}

// value reads a field, treating nil pointers as missing.
func value(get func(record any) (any, bool), record any) (any, bool) {
	v, ok := get(record)
	if !ok || v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

func textOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	if n, err := filter.ToInt(v); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprint(v)
}

// sameID compares decimal identifiers by value, as SQL does for integer columns,
// so "01234" equals 1234.
func sameID(got, want string) bool {
	if got == want {
		return true
	}
	g, err := strconv.ParseInt(got, 10, 64)
	if err != nil {
		return false
	}
	w, err := strconv.ParseInt(want, 10, 64)
	if err != nil {
		return false
	}
	return g == w
}

// epoch normalizes times and unix seconds to unix seconds.
func epoch(v any) (int64, error) {
	if t, ok := v.(time.Time); ok {
		return t.Unix(), nil
	}
	t, err := filter.ToTime(v)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

func compare[N int64 | float64](got, want N, op filter.Operator) bool {
	switch op {
	case filter.OpEq:
		return got == want
	case filter.OpGte:
		return got >= want
	case filter.OpLte:
		return got <= want
	}
	return false
}
