// Package protofilter reads loosely typed filter payloads carried as google.protobuf.Struct.
//
// The expected shape is {"<field>": {"<Operator>": <value>}}, for example
//
//	{"check_num": {"StartsWith": "12"}, "amount": {"Gte": 600}}
package protofilter

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/theplant/admintools/filter"
)

// ParseStruct converts a Struct payload into a request.
func ParseStruct(s *structpb.Struct) (*filter.Request, error) {
	if lo.IsNil(s) {
		return &filter.Request{}, nil
	}
	filterMap := s.AsMap()
	filter.PruneMap(filterMap)
	return filter.FromMap(filterMap)
}

// ParseJSON decodes a JSON object with protojson and converts it into a request.
func ParseJSON(data []byte) (*filter.Request, error) {
	if len(data) == 0 {
		return &filter.Request{}, nil
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "unmarshal filter payload")
	}
	return ParseStruct(s)
}

// NewStruct builds a Struct payload from a filter map, e.g. one produced by filter.ToMap.
func NewStruct(filterMap map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(filterMap)
	if err != nil {
		return nil, errors.Wrap(err, "new struct")
	}
	return s, nil
}
