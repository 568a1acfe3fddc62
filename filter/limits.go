package filter

import (
	"fmt"

	"github.com/samber/lo"
)

// Limits caps the size of a request.
// A value of 0 means no limit for that metric.
type Limits struct {
	MaxFilters  int // Maximum number of present filters
	MaxPerField int // Maximum number of present filters on one field
}

// DefaultLimits covers every search form in this repository.
var DefaultLimits = &Limits{
	MaxFilters:  10,
	MaxPerField: 2,
}

// CheckLimits validates that the present filters of req stay within limits.
// If limits is nil, no validation is performed.
func CheckLimits(req *Request, limits *Limits) error {
	if limits == nil {
		return nil
	}
	active := req.Active()
	if limits.MaxFilters > 0 && len(active) > limits.MaxFilters {
		return &InvalidFilterError{
			Field:  "*",
			Reason: fmt.Sprintf("%d filters exceeds limit %d", len(active), limits.MaxFilters),
		}
	}
	if limits.MaxPerField > 0 {
		counts := lo.CountValuesBy(active, func(s *Spec) string { return s.Field })
		for _, s := range active {
			if n := counts[s.Field]; n > limits.MaxPerField {
				return invalidf(s, "%d filters on one field exceeds limit %d", n, limits.MaxPerField)
			}
		}
	}
	return nil
}
