package filter

import (
	"reflect"
)

// Operator is a comparison applied by a single filter.
type Operator string

const (
	OpEq         Operator = "Eq"
	OpStartsWith Operator = "StartsWith"
	OpGte        Operator = "Gte"
	OpLte        Operator = "Lte"
)

func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpStartsWith, OpGte, OpLte:
		return true
	}
	return false
}

// Spec is one optional constraint on a collection field.
// It only contributes a predicate when Present is true and Value is not empty.
type Spec struct {
	Field    string
	Operator Operator
	Value    any
	Present  bool
	// Name keys the bound parameter for SQL backends. Defaults to "<field>_<op>".
	Name string
}

func Eq(field string, value any) *Spec {
	return &Spec{Field: field, Operator: OpEq, Value: value, Present: true}
}

func StartsWith(field string, value any) *Spec {
	return &Spec{Field: field, Operator: OpStartsWith, Value: value, Present: true}
}

func Gte(field string, value any) *Spec {
	return &Spec{Field: field, Operator: OpGte, Value: value, Present: true}
}

func Lte(field string, value any) *Spec {
	return &Spec{Field: field, Operator: OpLte, Value: value, Present: true}
}

// NotReady returns a spec for a control that has not reported a value yet.
func NotReady(field string, op Operator) *Spec {
	return &Spec{Field: field, Operator: op}
}

func (s *Spec) Named(name string) *Spec {
	s.Name = name
	return s
}

// IsSet reports whether the spec constrains the result.
func (s *Spec) IsSet() bool {
	if s == nil || !s.Present {
		return false
	}
	return !isEmptyValue(s.Value)
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if str, ok := v.(string); ok {
		return str == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isEmptyValue(rv.Elem().Interface())
	}
	return false
}

// Request is an ordered conjunction of specs over one collection.
// An empty request selects everything.
type Request struct {
	Filters []*Spec
}

func NewRequest(specs ...*Spec) *Request {
	return &Request{Filters: specs}
}

// And returns a copy of the request with specs appended.
func (r *Request) And(specs ...*Spec) *Request {
	var filters []*Spec
	if r != nil {
		filters = append(filters, r.Filters...)
	}
	return &Request{Filters: append(filters, specs...)}
}

// Active returns the specs that constrain the result, in order.
func (r *Request) Active() []*Spec {
	if r == nil {
		return nil
	}
	var active []*Spec
	for _, s := range r.Filters {
		if s.IsSet() {
			active = append(active, s)
		}
	}
	return active
}
