// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package rdata models the typed R values exchanged with a DeployR server.
//
// Values travel in two directions. Inputs are encoded client-side and sent
// with an execution request as the "inputs" form parameter; outputs come
// back in the "workspace.objects" section of an execution response. Both use
// the DeployR JSON encoding: a type (primitive, vector, dataframe, ...), an
// optional R class and a value.
//
// The package also converts values to and from Table, a plain column/row
// representation used for rendering, database export and for building data
// frames from delimited text files.
package rdata

import (
	"encoding/json"
	"math"
)

// Kind identifies the concrete encoding of a Value.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindNumeric
	KindBoolean
	KindNumericVector
	KindStringVector
	KindBooleanVector
	KindDataFrame
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindString:        "string",
	KindNumeric:       "numeric",
	KindBoolean:       "boolean",
	KindNumericVector: "numeric vector",
	KindStringVector:  "string vector",
	KindBooleanVector: "boolean vector",
	KindDataFrame:     "data frame",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Value is a named R object. Implementations are immutable once built.
type Value interface {
	Name() string
	Kind() Kind
}

// String is a character primitive.
type String struct {
	name  string
	Value string
}

// Numeric is a numeric primitive. NA is represented as NaN.
type Numeric struct {
	name  string
	Value float64
}

// Boolean is a logical primitive.
type Boolean struct {
	name  string
	Value bool
}

// NumericVector is a numeric vector. NA elements are NaN.
type NumericVector struct {
	name  string
	Value []float64
}

// StringVector is a character vector. NA elements are empty strings.
type StringVector struct {
	name  string
	Value []string
}

// BooleanVector is a logical vector. NA elements are false.
type BooleanVector struct {
	name  string
	Value []bool
}

// DataFrame is an R data.frame; each column is itself a named Value,
// normally a vector.
type DataFrame struct {
	name    string
	Columns []Value
}

// Unknown holds an object whose encoding this package does not model
// (factor, matrix, list, date and so on). Raw is the complete JSON object.
type Unknown struct {
	name   string
	Type   string
	RClass string
	Raw    json.RawMessage
}

func NewString(name, v string) *String           { return &String{name: name, Value: v} }
func NewNumeric(name string, v float64) *Numeric { return &Numeric{name: name, Value: v} }
func NewBoolean(name string, v bool) *Boolean    { return &Boolean{name: name, Value: v} }

// NewDataFrame builds a data frame from columns. Column names are taken
// from the column values.
func NewDataFrame(name string, cols ...Value) *DataFrame {
	return &DataFrame{name: name, Columns: cols}
}

// NewNumericVector copies v into a new vector.
func NewNumericVector(name string, v []float64) *NumericVector {
	return &NumericVector{name: name, Value: append([]float64(nil), v...)}
}

// NewStringVector copies v into a new vector.
func NewStringVector(name string, v []string) *StringVector {
	return &StringVector{name: name, Value: append([]string(nil), v...)}
}

// NewBooleanVector copies v into a new vector.
func NewBooleanVector(name string, v []bool) *BooleanVector {
	return &BooleanVector{name: name, Value: append([]bool(nil), v...)}
}

func (v *String) Name() string        { return v.name }
func (v *Numeric) Name() string       { return v.name }
func (v *Boolean) Name() string       { return v.name }
func (v *NumericVector) Name() string { return v.name }
func (v *StringVector) Name() string  { return v.name }
func (v *BooleanVector) Name() string { return v.name }
func (v *DataFrame) Name() string     { return v.name }
func (v *Unknown) Name() string       { return v.name }

func (*String) Kind() Kind        { return KindString }
func (*Numeric) Kind() Kind       { return KindNumeric }
func (*Boolean) Kind() Kind       { return KindBoolean }
func (*NumericVector) Kind() Kind { return KindNumericVector }
func (*StringVector) Kind() Kind  { return KindStringVector }
func (*BooleanVector) Kind() Kind { return KindBooleanVector }
func (*DataFrame) Kind() Kind     { return KindDataFrame }
func (*Unknown) Kind() Kind       { return KindUnknown }

// IsNA reports whether f is the numeric NA marker.
func IsNA(f float64) bool { return math.IsNaN(f) }

// NA returns the numeric NA marker.
func NA() float64 { return math.NaN() }

// Column returns the data frame column with the given name, or nil.
func (v *DataFrame) Column(name string) Value {
	for _, c := range v.Columns {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Len returns the number of elements of a vector or primitive value.
// Data frames report their row count; unknown values report zero.
func Len(v Value) int {
	switch t := v.(type) {
	case *String, *Numeric, *Boolean:
		return 1
	case *NumericVector:
		return len(t.Value)
	case *StringVector:
		return len(t.Value)
	case *BooleanVector:
		return len(t.Value)
	case *DataFrame:
		n := 0
		for _, c := range t.Columns {
			if l := Len(c); l > n {
				n = l
			}
		}
		return n
	}
	return 0
}
