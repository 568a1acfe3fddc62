package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Condition is a validated predicate over one field with a value coerced to the field type.
//
// Value types by field type:
//   - TypeString: string
//   - TypeID: string or int64, as given
//   - TypeInt: int64
//   - TypeFloat: float64
//   - TypeTime: int64 unix seconds when Field.Epoch, time.Time in UTC otherwise
type Condition struct {
	Field    *Field
	Operator Operator
	Value    any
	Param    string
}

// Compiled is the conjunction of the present filters of a request.
// It carries no conditions when every filter is absent.
type Compiled struct {
	Schema     *Schema
	Conditions []*Condition
}

func (c *Compiled) Empty() bool {
	return c == nil || len(c.Conditions) == 0
}

// Compile validates req against schema and drops absent filters.
func Compile(schema *Schema, req *Request) (*Compiled, error) {
	compiled := &Compiled{Schema: schema}
	used := map[string]bool{}
	for _, spec := range req.Active() {
		field, ok := schema.Field(spec.Field)
		if !ok {
			return nil, invalidf(spec, "unknown field in collection %q", schema.Collection)
		}
		if !spec.Operator.Valid() {
			return nil, invalidf(spec, "unknown operator")
		}
		if !field.Type.Supports(spec.Operator) {
			return nil, invalidf(spec, "operator not supported by %s field", strings.ToLower(string(field.Type)))
		}
		value, err := coerce(field, spec.Value)
		if err != nil {
			return nil, invalidf(spec, "%v", err)
		}

		base := spec.Name
		if base == "" {
			base = fmt.Sprintf("%s_%s", field.Name, strings.ToLower(string(spec.Operator)))
		}
		// Every emitted name is reserved, so an explicit name never shadows a suffixed one.
		param := base
		for n := 1; used[param]; {
			n++
			param = fmt.Sprintf("%s_%d", base, n)
		}
		used[param] = true

		compiled.Conditions = append(compiled.Conditions, &Condition{
			Field:    field,
			Operator: spec.Operator,
			Value:    value,
			Param:    param,
		})
	}
	return compiled, nil
}

func coerce(field *Field, v any) (any, error) {
	v = indirect(v)
	switch field.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Errorf("expected string, got %T", v)
		}
		return s, nil
	case TypeID:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return ToInt(v)
	case TypeInt:
		return ToInt(v)
	case TypeFloat:
		return ToFloat(v)
	case TypeTime:
		t, err := ToTime(v)
		if err != nil {
			return nil, err
		}
		if field.Epoch {
			return t.Unix(), nil
		}
		return t, nil
	}
	return nil, errors.Errorf("unsupported field type %q", field.Type)
}

func indirect(v any) any {
	for {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || rv.IsNil() {
			return v
		}
		v = rv.Elem().Interface()
	}
}

// ToInt converts integers, integral floats, json numbers and decimal strings to int64.
func ToInt(v any) (int64, error) {
	v = indirect(v)
	switch x := v.(type) {
	case json.Number:
		return strconv.ParseInt(x.String(), 10, 64)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, errors.Errorf("%q is not an integer", x)
		}
		return n, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, errors.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, errors.Errorf("%v is not an integer", f)
		}
		return int64(f), nil
	}
	return 0, errors.Errorf("expected integer, got %T", v)
}

// ToFloat converts numbers, json numbers and decimal strings to float64.
func ToFloat(v any) (float64, error) {
	v = indirect(v)
	switch x := v.(type) {
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errors.Errorf("%q is not a number", x)
		}
		return f, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return 0, errors.Errorf("expected number, got %T", v)
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ToTime converts times, RFC 3339 or date strings and unix seconds to a UTC time.
func ToTime(v any) (time.Time, error) {
	v = indirect(v)
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(x)); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, errors.Errorf("%q is not a date", x)
	}
	secs, err := ToInt(v)
	if err != nil {
		return time.Time{}, errors.Errorf("expected time, got %T", v)
	}
	return time.Unix(secs, 0).UTC(), nil
}
