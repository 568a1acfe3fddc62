package filter

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// FieldType is the declared type of a filterable field.
type FieldType string

const (
	// TypeString is free text, compared exactly or by prefix.
	TypeString FieldType = "STRING"
	// TypeID is an identifier compared by its decimal or textual form, even when stored as a number.
	TypeID    FieldType = "ID"
	TypeInt   FieldType = "INT"
	TypeFloat FieldType = "FLOAT"
	TypeTime  FieldType = "TIME"
)

var supportedOperators = map[FieldType][]Operator{
	TypeString: {OpEq, OpStartsWith},
	TypeID:     {OpEq, OpStartsWith},
	TypeInt:    {OpEq, OpGte, OpLte},
	TypeFloat:  {OpEq, OpGte, OpLte},
	TypeTime:   {OpEq, OpGte, OpLte},
}

// Supports reports whether op can be applied to a field of this type.
func (t FieldType) Supports(op Operator) bool {
	return lo.Contains(supportedOperators[t], op)
}

// Field declares one filterable field of a collection.
type Field struct {
	// Name is the key used by filters.
	Name string
	// Column is the SQL column. Defaults to Name.
	Column string
	// Path is the Go field path used by in-memory collections, e.g. "Contract.Address".
	Path string
	Type FieldType
	// Epoch marks time fields stored as unix seconds.
	Epoch bool
	// Accessor overrides Path for in-memory collections.
	Accessor func(record any) (any, bool)
}

func (f *Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// Schema is the typed record shape of one collection.
type Schema struct {
	Collection string
	Fields     []*Field

	byName map[string]*Field
}

func NewSchema(collection string, fields ...*Field) (*Schema, error) {
	if collection == "" {
		return nil, errors.New("collection must not be empty")
	}
	s := &Schema{
		Collection: collection,
		Fields:     fields,
		byName:     make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.Errorf("field without name in collection %q", collection)
		}
		if _, ok := supportedOperators[f.Type]; !ok {
			return nil, errors.Errorf("unknown type %q for field %q", f.Type, f.Name)
		}
		if _, ok := s.byName[f.Name]; ok {
			return nil, errors.Errorf("duplicated field %q in collection %q", f.Name, collection)
		}
		s.byName[f.Name] = f
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for package level declarations.
func MustSchema(collection string, fields ...*Field) *Schema {
	s, err := NewSchema(collection, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}
