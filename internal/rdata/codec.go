// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package rdata

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// wireValue is the DeployR JSON encoding of a single R object.
type wireValue struct {
	Name   string          `json:"name,omitempty"`
	Type   string          `json:"type"`
	RClass string          `json:"rclass,omitempty"`
	Value  json.RawMessage `json:"value"`
}

const (
	typePrimitive = "primitive"
	typeVector    = "vector"
	typeDataFrame = "dataframe"

	classCharacter = "character"
	classNumeric   = "numeric"
	classInteger   = "integer"
	classLogical   = "logical"
)

// EncodeInputs renders values as the JSON object expected by the "inputs"
// parameter: a map of object name to encoded value. An empty slice encodes
// as the empty string so callers can omit the parameter.
func EncodeInputs(values []Value) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	out := make(map[string]wireValue, len(values))
	for _, v := range values {
		if v == nil || v.Name() == "" {
			return "", errors.New("rdata: input value without a name")
		}
		if _, dup := out[v.Name()]; dup {
			return "", errors.Errorf("rdata: duplicate input %q", v.Name())
		}
		w, err := encode(v)
		if err != nil {
			return "", errors.Wrapf(err, "rdata: encode input %q", v.Name())
		}
		w.Name = ""
		out[v.Name()] = w
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "rdata: marshal inputs")
	}
	return string(b), nil
}

// Encode renders a single value, including its name.
func Encode(v Value) ([]byte, error) {
	w, err := encode(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func encode(v Value) (wireValue, error) {
	w := wireValue{Name: v.Name()}
	var raw any
	switch t := v.(type) {
	case *String:
		w.Type, w.RClass, raw = typePrimitive, classCharacter, t.Value
	case *Numeric:
		f, err := nullableFloat(t.Value)
		if err != nil {
			return w, err
		}
		w.Type, w.RClass, raw = typePrimitive, classNumeric, f
	case *Boolean:
		w.Type, w.RClass, raw = typePrimitive, classLogical, t.Value
	case *NumericVector:
		vals := make([]*float64, len(t.Value))
		for i, f := range t.Value {
			nf, err := nullableFloat(f)
			if err != nil {
				return w, errors.Wrapf(err, "element %d", i+1)
			}
			vals[i] = nf
		}
		w.Type, w.RClass, raw = typeVector, classNumeric, vals
	case *StringVector:
		w.Type, w.RClass, raw = typeVector, classCharacter, t.Value
	case *BooleanVector:
		w.Type, w.RClass, raw = typeVector, classLogical, t.Value
	case *DataFrame:
		cols := make([]wireValue, 0, len(t.Columns))
		for _, c := range t.Columns {
			cw, err := encode(c)
			if err != nil {
				return w, errors.Wrapf(err, "column %q", c.Name())
			}
			cols = append(cols, cw)
		}
		w.Type, raw = typeDataFrame, cols
	case *Unknown:
		// Round-trip the original object, minus its name.
		var u wireValue
		if err := json.Unmarshal(t.Raw, &u); err != nil {
			return w, errors.Wrap(err, "unknown value")
		}
		u.Name = t.name
		return u, nil
	default:
		return w, errors.Errorf("unsupported value type %T", v)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return w, err
	}
	w.Value = b
	return w, nil
}

// nullableFloat maps NA to null. Infinities have no JSON form and are
// rejected rather than sent as NA.
func nullableFloat(f float64) (*float64, error) {
	switch {
	case math.IsNaN(f):
		return nil, nil
	case math.IsInf(f, 0):
		return nil, errors.Errorf("non-finite number %v", f)
	}
	return &f, nil
}

// DecodeObjects decodes the "workspace.objects" array of an execution
// response. A null or absent array yields no values.
func DecodeObjects(raw json.RawMessage) ([]Value, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(err, "rdata: workspace objects")
	}
	out := make([]Value, 0, len(items))
	for i, item := range items {
		v, err := Decode(item)
		if err != nil {
			return nil, errors.Wrapf(err, "rdata: workspace object %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

// Decode decodes one encoded R object. Encodings other than character,
// numeric and logical primitives or vectors and data frames are returned
// as *Unknown.
func Decode(raw json.RawMessage) (Value, error) {
	var w wireValue
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, errors.Wrap(err, "decode object")
	}
	v, err := decode(w)
	if err != nil {
		return nil, errors.Wrapf(err, "object %q", w.Name)
	}
	if v == nil {
		return &Unknown{name: w.Name, Type: w.Type, RClass: w.RClass, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
	return v, nil
}

// decode returns nil, nil for encodings it does not model.
func decode(w wireValue) (Value, error) {
	switch w.Type {
	case typePrimitive:
		return decodePrimitive(w)
	case typeVector:
		return decodeVector(w)
	case typeDataFrame:
		var cols []json.RawMessage
		if err := json.Unmarshal(w.Value, &cols); err != nil {
			return nil, errors.Wrap(err, "dataframe columns")
		}
		df := &DataFrame{name: w.Name, Columns: make([]Value, 0, len(cols))}
		for _, c := range cols {
			cv, err := Decode(c)
			if err != nil {
				return nil, err
			}
			df.Columns = append(df.Columns, cv)
		}
		return df, nil
	}
	return nil, nil
}

func decodePrimitive(w wireValue) (Value, error) {
	class := w.RClass
	if class == "" {
		class = sniffClass(w.Value)
	}
	switch class {
	case classCharacter:
		var s *string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return nil, errors.Wrap(err, "character primitive")
		}
		if s == nil {
			return &String{name: w.Name}, nil
		}
		return &String{name: w.Name, Value: *s}, nil
	case classNumeric, classInteger:
		var f *float64
		if err := json.Unmarshal(w.Value, &f); err != nil {
			return nil, errors.Wrap(err, "numeric primitive")
		}
		if f == nil {
			return &Numeric{name: w.Name, Value: math.NaN()}, nil
		}
		return &Numeric{name: w.Name, Value: *f}, nil
	case classLogical:
		var b *bool
		if err := json.Unmarshal(w.Value, &b); err != nil {
			return nil, errors.Wrap(err, "logical primitive")
		}
		return &Boolean{name: w.Name, Value: b != nil && *b}, nil
	}
	return nil, nil
}

func decodeVector(w wireValue) (Value, error) {
	class := w.RClass
	if class == "" {
		class = sniffClass(w.Value)
	}
	switch class {
	case classCharacter:
		var in []*string
		if err := json.Unmarshal(w.Value, &in); err != nil {
			return nil, errors.Wrap(err, "character vector")
		}
		out := make([]string, len(in))
		for i, s := range in {
			if s != nil {
				out[i] = *s
			}
		}
		return &StringVector{name: w.Name, Value: out}, nil
	case classNumeric, classInteger:
		var in []*float64
		if err := json.Unmarshal(w.Value, &in); err != nil {
			return nil, errors.Wrap(err, "numeric vector")
		}
		out := make([]float64, len(in))
		for i, f := range in {
			if f == nil {
				out[i] = math.NaN()
			} else {
				out[i] = *f
			}
		}
		return &NumericVector{name: w.Name, Value: out}, nil
	case classLogical:
		var in []*bool
		if err := json.Unmarshal(w.Value, &in); err != nil {
			return nil, errors.Wrap(err, "logical vector")
		}
		out := make([]bool, len(in))
		for i, b := range in {
			out[i] = b != nil && *b
		}
		return &BooleanVector{name: w.Name, Value: out}, nil
	}
	return nil, nil
}

// sniffClass guesses the R class from the first non-null JSON value when
// the server omits rclass.
func sniffClass(raw json.RawMessage) string {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	if arr, ok := probe.([]any); ok {
		probe = nil
		for _, e := range arr {
			if e != nil {
				probe = e
				break
			}
		}
	}
	switch probe.(type) {
	case string:
		return classCharacter
	case float64:
		return classNumeric
	case bool:
		return classLogical
	}
	return ""
}
