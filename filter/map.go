package filter

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// TagKey is the struct tag naming the schema field a typed filter member targets.
// Members without the tag use their Go field name.
const TagKey = "filter"

var jsoniterForFilter = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	TagKey:                 TagKey,
}.Froze()

// ToMap converts a typed filter to a map[string]any.
func ToMap(v any) (map[string]any, error) {
	if lo.IsNil(v) {
		return nil, nil
	}
	data, err := jsoniterForFilter.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal filter")
	}
	var filterMap map[string]any
	if err := jsoniterForFilter.Unmarshal(data, &filterMap); err != nil {
		return nil, errors.Wrap(err, "unmarshal filter to map")
	}
	PruneMap(filterMap)
	return filterMap, nil
}

// PruneMap recursively removes nil values, empty slices, and empty nested maps.
func PruneMap(m map[string]any) {
	for k, v := range m {
		if v == nil {
			delete(m, k)
			continue
		}

		if nestedMap, ok := v.(map[string]any); ok {
			PruneMap(nestedMap)
			if len(nestedMap) == 0 {
				delete(m, k)
			}
			continue
		}

		if slice, ok := v.([]any); ok {
			if len(slice) == 0 {
				delete(m, k)
			}
		}
	}
}

// FromMap converts {"field": {"Op": value}} into a request.
// Fields and operators are visited in sorted order.
func FromMap(filterMap map[string]any) (*Request, error) {
	req := &Request{}

	fields := lo.Keys(filterMap)
	sort.Strings(fields)

	for _, field := range fields {
		ops, ok := filterMap[field].(map[string]any)
		if !ok {
			if filterMap[field] == nil {
				continue
			}
			return nil, &InvalidFilterError{Field: field, Reason: "value should be an operator map"}
		}

		names := lo.Keys(ops)
		sort.Strings(names)

		for _, name := range names {
			op := Operator(name)
			if !op.Valid() {
				return nil, &InvalidFilterError{Field: field, Operator: op, Reason: "unknown operator"}
			}
			value := ops[name]
			req.Filters = append(req.Filters, &Spec{
				Field:    field,
				Operator: op,
				Value:    value,
				Present:  value != nil,
			})
		}
	}
	return req, nil
}

// FromStruct converts a typed filter struct, such as
//
//	type CheckFilter struct {
//		Bank   *filter.String `filter:"bank"`
//		Amount *filter.Int    `filter:"amount"`
//	}
//
// into a request.
func FromStruct(v any) (*Request, error) {
	filterMap, err := ToMap(v)
	if err != nil {
		return nil, err
	}
	return FromMap(filterMap)
}
