// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"dataio/cli/internal/rdata"
)

func TestToValuePrimitives(t *testing.T) {
	v, err := ToValue("s", cty.StringVal("hip"))
	require.NoError(t, err)
	assert.Equal(t, "hip", v.(*rdata.String).Value)

	v, err = ToValue("n", cty.NumberFloatVal(9.5))
	require.NoError(t, err)
	assert.Equal(t, 9.5, v.(*rdata.Numeric).Value)

	v, err = ToValue("b", cty.True)
	require.NoError(t, err)
	assert.True(t, v.(*rdata.Boolean).Value)

	_, err = ToValue("null", cty.NullVal(cty.String))
	assert.Error(t, err)
}

func TestToValueVectors(t *testing.T) {
	v, err := ToValue("dim", cty.TupleVal([]cty.Value{cty.NumberIntVal(2), cty.NullVal(cty.DynamicPseudoType), cty.NumberIntVal(9)}))
	require.NoError(t, err)
	nv := v.(*rdata.NumericVector)
	require.Len(t, nv.Value, 3)
	assert.Equal(t, 2.0, nv.Value[0])
	assert.True(t, rdata.IsNA(nv.Value[1]))

	v, err = ToValue("names", cty.ListVal([]cty.Value{cty.StringVal("HIP"), cty.StringVal("Vmag")}))
	require.NoError(t, err)
	assert.Equal(t, []string{"HIP", "Vmag"}, v.(*rdata.StringVector).Value)

	v, err = ToValue("flags", cty.TupleVal([]cty.Value{cty.True, cty.False}))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, v.(*rdata.BooleanVector).Value)

	v, err = ToValue("empty", cty.EmptyTupleVal)
	require.NoError(t, err)
	assert.Equal(t, rdata.KindNumericVector, v.Kind())
}

func TestToValueFrame(t *testing.T) {
	v, err := ToValue("hip", cty.ObjectVal(map[string]cty.Value{
		"Vmag": cty.TupleVal([]cty.Value{cty.NumberFloatVal(9.27), cty.NumberFloatVal(8.65)}),
		"HIP":  cty.TupleVal([]cty.Value{cty.NumberIntVal(2), cty.NumberIntVal(38)}),
		"Tag":  cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
	}))
	require.NoError(t, err)

	df := v.(*rdata.DataFrame)
	require.Len(t, df.Columns, 3)
	assert.Equal(t, "HIP", df.Columns[0].Name())
	assert.Equal(t, rdata.KindStringVector, df.Column("Tag").Kind())
	assert.Equal(t, 2, rdata.Len(df))
}

func TestToValueFrameErrors(t *testing.T) {
	_, err := ToValue("ragged", cty.ObjectVal(map[string]cty.Value{
		"a": cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}),
		"b": cty.TupleVal([]cty.Value{cty.NumberIntVal(1)}),
	}))
	assert.Error(t, err)

	_, err = ToValue("empty", cty.EmptyObjectVal)
	assert.Error(t, err)
}
