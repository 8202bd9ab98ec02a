// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package plan

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"dataio/cli/internal/rdata"
)

// ToValue converts an HCL value into an encoded R input named name.
//
// Strings, numbers and bools become primitives. Lists and tuples become
// vectors and must hold one element type; null elements of a numeric list
// are NA. Objects and maps become data frames whose attributes are the
// columns, in attribute name order; every column must have the same length.
func ToValue(name string, v cty.Value) (rdata.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, fmt.Errorf("value must be known and not null")
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return rdata.NewString(name, v.AsString()), nil
	case ty == cty.Number:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return rdata.NewNumeric(name, f), nil
	case ty == cty.Bool:
		return rdata.NewBoolean(name, v.True()), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		return toVector(name, v)
	case ty.IsObjectType() || ty.IsMapType():
		return toFrame(name, v)
	}
	return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}

func toFloat(v cty.Value) (float64, error) {
	var f float64
	if err := gocty.FromCtyValue(v, &f); err != nil {
		return 0, fmt.Errorf("could not convert number to float64: %w", err)
	}
	return f, nil
}

func toVector(name string, v cty.Value) (rdata.Value, error) {
	var (
		nums  []float64
		strs  []string
		bools []bool
		kind  cty.Type
	)
	it := v.ElementIterator()
	for i := 0; it.Next(); i++ {
		_, el := it.Element()
		if !el.IsKnown() {
			return nil, fmt.Errorf("element %d is unknown", i)
		}
		ety := el.Type()
		if el.IsNull() {
			ety = cty.Number
		}
		if kind == cty.NilType {
			kind = ety
		} else if !ety.Equals(kind) {
			return nil, fmt.Errorf("element %d is %s, want %s", i, ety.FriendlyName(), kind.FriendlyName())
		}
		switch {
		case el.IsNull():
			nums = append(nums, rdata.NA())
		case ety == cty.Number:
			f, err := toFloat(el)
			if err != nil {
				return nil, err
			}
			nums = append(nums, f)
		case ety == cty.String:
			strs = append(strs, el.AsString())
		case ety == cty.Bool:
			bools = append(bools, el.True())
		default:
			return nil, fmt.Errorf("element %d has unsupported type %s", i, ety.FriendlyName())
		}
	}
	switch kind {
	case cty.String:
		return rdata.NewStringVector(name, strs), nil
	case cty.Bool:
		return rdata.NewBooleanVector(name, bools), nil
	}
	return rdata.NewNumericVector(name, nums), nil
}

func toFrame(name string, v cty.Value) (rdata.Value, error) {
	var cols []rdata.Value
	rows := -1
	it := v.ElementIterator()
	for it.Next() {
		k, el := it.Element()
		col := k.AsString()
		if !el.IsKnown() || el.IsNull() {
			return nil, fmt.Errorf("column %q must be known and not null", col)
		}
		ety := el.Type()
		if !(ety.IsListType() || ety.IsTupleType()) {
			el = cty.TupleVal([]cty.Value{el})
		}
		cv, err := toVector(col, el)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		n := rdata.Len(cv)
		if rows >= 0 && n != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", col, n, rows)
		}
		rows = n
		cols = append(cols, cv)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("data frame has no columns")
	}
	return rdata.NewDataFrame(name, cols...), nil
}
