package dataframe

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Kind is the declared semantic type of a column.
type Kind int

const (
	// KindNumeric is a continuous value stored as float64 (int64 is accepted).
	KindNumeric Kind = iota
	// KindInteger is a whole number stored as int64.
	KindInteger
	// KindBoolean is a true/false flag.
	KindBoolean
	// KindCategorical is a discrete label, usually text.
	KindCategorical
	// KindText is free text that still needs parsing.
	KindText
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindCategorical:
		return "categorical"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Accepts reports whether a column with the given physical type can carry this kind.
func (k Kind) Accepts(dt arrow.DataType) bool {
	if dt == nil {
		return false
	}
	id := dt.ID()
	switch k {
	case KindNumeric:
		return id == arrow.FLOAT64 || id == arrow.INT64
	case KindInteger:
		return id == arrow.INT64
	case KindBoolean:
		return id == arrow.BOOL
	case KindCategorical:
		return id == arrow.STRING || id == arrow.INT64 || id == arrow.BOOL
	case KindText:
		return id == arrow.STRING
	default:
		return false
	}
}

// KindForType returns the default kind for a physical Arrow type.
func KindForType(dt arrow.DataType) Kind {
	if dt == nil {
		return KindCategorical
	}
	//nolint:exhaustive // only the types a Series can hold
	switch dt.ID() {
	case arrow.FLOAT64:
		return KindNumeric
	case arrow.INT64:
		return KindInteger
	case arrow.BOOL:
		return KindBoolean
	default:
		return KindCategorical
	}
}

// Field describes one column of a Schema.
type Field struct {
	Name string
	Kind Kind
	Type arrow.DataType
}

// Schema is the ordered, typed description of a DataFrame.
type Schema struct {
	Fields []Field
}

// Field looks up a field by column name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// String renders the schema as "name:kind" pairs.
func (s Schema) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + ":" + f.Kind.String()
	}
	return "Schema[" + strings.Join(parts, ", ") + "]"
}
