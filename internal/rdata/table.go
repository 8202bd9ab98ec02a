// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package rdata

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotTabular is returned when a value has no tabular form.
var ErrNotTabular = errors.New("rdata: value has no tabular representation")

// Table is a column/row view of R data. Cells hold float64, string, bool
// or nil for NA.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.Columns) }

// Column returns all cells of column i.
func (t *Table) Column(i int) []any {
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}

// FromValue converts a data frame, vector or primitive to a table. Vectors
// become a single column named after the value; data frames keep their
// column order and pad short columns with NA.
func FromValue(v Value) (*Table, error) {
	switch t := v.(type) {
	case *DataFrame:
		tbl := &Table{Columns: make([]string, len(t.Columns))}
		cols := make([][]any, len(t.Columns))
		rows := 0
		for i, c := range t.Columns {
			tbl.Columns[i] = c.Name()
			cells, err := cells(c)
			if err != nil {
				return nil, errors.Wrapf(err, "column %q", c.Name())
			}
			cols[i] = cells
			if len(cells) > rows {
				rows = len(cells)
			}
		}
		tbl.Rows = make([][]any, rows)
		for r := range tbl.Rows {
			row := make([]any, len(cols))
			for c := range cols {
				if r < len(cols[c]) {
					row[c] = cols[c][r]
				}
			}
			tbl.Rows[r] = row
		}
		return tbl, nil
	case nil:
		return nil, ErrNotTabular
	default:
		cs, err := cells(v)
		if err != nil {
			return nil, err
		}
		tbl := &Table{Columns: []string{v.Name()}, Rows: make([][]any, len(cs))}
		for i, c := range cs {
			tbl.Rows[i] = []any{c}
		}
		return tbl, nil
	}
}

func cells(v Value) ([]any, error) {
	switch t := v.(type) {
	case *String:
		return []any{t.Value}, nil
	case *Numeric:
		return []any{naOrFloat(t.Value)}, nil
	case *Boolean:
		return []any{t.Value}, nil
	case *NumericVector:
		out := make([]any, len(t.Value))
		for i, f := range t.Value {
			out[i] = naOrFloat(f)
		}
		return out, nil
	case *StringVector:
		out := make([]any, len(t.Value))
		for i, s := range t.Value {
			out[i] = s
		}
		return out, nil
	case *BooleanVector:
		out := make([]any, len(t.Value))
		for i, b := range t.Value {
			out[i] = b
		}
		return out, nil
	case *Unknown:
		// Factors and dates still carry a flat value array worth showing.
		var w wireValue
		if err := json.Unmarshal(t.Raw, &w); err != nil {
			return nil, ErrNotTabular
		}
		var arr []any
		if err := json.Unmarshal(w.Value, &arr); err != nil {
			return nil, ErrNotTabular
		}
		for _, e := range arr {
			switch e.(type) {
			case nil, string, float64, bool:
			default:
				return nil, ErrNotTabular
			}
		}
		return arr, nil
	}
	return nil, ErrNotTabular
}

func naOrFloat(f float64) any {
	if IsNA(f) {
		return nil
	}
	return f
}

// ReadTable reads delimited text into a table of string cells. Lines are
// trimmed and split on the delimiter pattern (a regular expression such as
// `\s+` or `,`); blank lines are skipped. With header set, the first line
// names the columns, otherwise columns are named V1..Vn. A row whose width
// differs from the header is an error unless nullOnError is set, in which
// case missing cells are NA and surplus cells are dropped.
func ReadTable(r io.Reader, delimiter string, header, nullOnError bool) (*Table, error) {
	re, err := regexp.Compile(delimiter)
	if err != nil {
		return nil, errors.Wrap(err, "rdata: delimiter")
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	tbl := &Table{}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := re.Split(text, -1)
		if tbl.Columns == nil {
			if header {
				tbl.Columns = fields
				continue
			}
			tbl.Columns = make([]string, len(fields))
			for i := range fields {
				tbl.Columns[i] = fmt.Sprintf("V%d", i+1)
			}
		}
		if len(fields) != len(tbl.Columns) && !nullOnError {
			return nil, errors.Errorf("rdata: line %d has %d fields, want %d", line, len(fields), len(tbl.Columns))
		}
		row := make([]any, len(tbl.Columns))
		for i := range row {
			if i < len(fields) {
				row[i] = fields[i]
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "rdata: read table")
	}
	if tbl.Columns == nil {
		return nil, errors.New("rdata: empty table")
	}
	return tbl, nil
}

// AsDataFrame converts the table to a data frame. A column becomes numeric
// when every non-NA cell is a number or numeric text, logical when every
// non-NA cell is a bool, and character otherwise. Text cells "NA" and ""
// count as NA.
func (t *Table) AsDataFrame(name string) *DataFrame {
	df := &DataFrame{name: name, Columns: make([]Value, len(t.Columns))}
	for i, col := range t.Columns {
		df.Columns[i] = columnValue(col, t.Column(i))
	}
	return df
}

func columnValue(name string, cells []any) Value {
	numeric, logical := true, true
	for _, c := range cells {
		switch x := c.(type) {
		case nil:
		case float64:
			logical = false
		case bool:
			numeric = false
		case string:
			logical = false
			if isNAText(x) {
				continue
			}
			if _, ok := ParseNumber(x); !ok {
				numeric = false
			}
		default:
			numeric, logical = false, false
		}
	}
	switch {
	case numeric:
		out := make([]float64, len(cells))
		for i, c := range cells {
			out[i] = toFloat(c)
		}
		return &NumericVector{name: name, Value: out}
	case logical:
		out := make([]bool, len(cells))
		for i, c := range cells {
			b, _ := c.(bool)
			out[i] = b
		}
		return &BooleanVector{name: name, Value: out}
	}
	out := make([]string, len(cells))
	for i, c := range cells {
		if c != nil {
			out[i] = fmt.Sprint(c)
		}
	}
	return &StringVector{name: name, Value: out}
}

func isNAText(s string) bool { return s == "" || s == "NA" }

var decimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses numeric cell text in plain decimal notation only.
// Hex floats, "Inf" and "NaN" stay text, as do values outside the float64
// range.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !decimal.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func toFloat(c any) float64 {
	switch x := c.(type) {
	case float64:
		return x
	case string:
		if isNAText(x) {
			return NA()
		}
		if f, ok := ParseNumber(x); ok {
			return f
		}
		return NA()
	}
	return NA()
}
