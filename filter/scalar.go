package filter

import (
	"time"
)

// String provides filtering operations for text fields.
type String struct {
	Eq         *string
	StartsWith *string
}

// ID is an alias for String, used for identifier fields.
type ID String

// Float provides filtering operations for float64 fields.
type Float struct {
	Eq  *float64
	Gte *float64
	Lte *float64
}

// Int provides filtering operations for integer fields.
type Int struct {
	Eq  *int
	Gte *int
	Lte *int
}

// Time provides filtering operations for time.Time fields.
type Time struct {
	Eq  *time.Time
	Gte *time.Time
	Lte *time.Time
}
