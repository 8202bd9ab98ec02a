// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package export writes tables retrieved from DeployR executions into a
// relational database. A Sink is selected from the DSN: PostgreSQL through
// a pgx connection pool using COPY, MySQL through database/sql with
// go-sql-driver/mysql using batched multi-row INSERTs.
//
// Each table is created on first use with one column per table column and
// a SQL type inferred from the cell values (double precision, boolean or
// text). Existing tables are appended to unless Options.Replace is set.
package export

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dataio/cli/internal/dsn"
	"dataio/cli/internal/rdata"
)

// ColumnType is the inferred SQL type of a table column.
type ColumnType int

const (
	ColumnFloat ColumnType = iota
	ColumnBool
	ColumnText
)

// Options controls how tables are written.
type Options struct {
	// TablePrefix is prepended to every table name.
	TablePrefix string
	// Replace drops an existing table before writing.
	Replace bool
}

// Sink is a database that accepts tables.
type Sink interface {
	// WriteTable creates table name if needed and inserts every row of t.
	// It returns the number of rows written.
	WriteTable(ctx context.Context, name string, t *rdata.Table) (int64, error)
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error
	// Kind names the database type.
	Kind() dsn.DBType
	Close()
}

// Open parses rawDSN and connects the matching sink.
func Open(ctx context.Context, rawDSN string, opts Options) (Sink, error) {
	info, err := dsn.ParseInfo(rawDSN)
	if err != nil {
		return nil, err
	}
	normalized, err := dsn.Parse(rawDSN)
	if err != nil {
		return nil, err
	}
	switch info.Type {
	case dsn.DBTypePostgreSQL:
		s, err := openPostgres(ctx, normalized, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	case dsn.DBTypeMySQL:
		s, err := openMySQL(ctx, normalized, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("export: unsupported database type %q", info.Type)
}

var unsafeIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// TableName turns an R object name into a safe lower-case identifier.
func TableName(prefix, object string) string {
	s := unsafeIdent.ReplaceAllString(strings.ToLower(prefix+object), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "r_object"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "t_" + s
	}
	if len(s) > 63 {
		s = s[:63]
	}
	return s
}

// columnNames makes column names unique and non-empty, preserving order.
func columnNames(t *rdata.Table) []string {
	used := make(map[string]bool, len(t.Columns))
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		base := strings.TrimSpace(c)
		if base == "" {
			base = "V" + strconv.Itoa(i+1)
		}
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

// inferTypes picks a ColumnType per column. A column is float when every
// non-NA cell is a number or numeric text, bool when every non-NA cell is a
// bool, and text otherwise.
func inferTypes(t *rdata.Table) []ColumnType {
	types := make([]ColumnType, len(t.Columns))
	for i := range t.Columns {
		isFloat, isBool, seen := true, true, false
		for _, row := range t.Rows {
			if i >= len(row) || row[i] == nil {
				continue
			}
			seen = true
			switch v := row[i].(type) {
			case float64:
				isBool = false
			case bool:
				isFloat = false
			case string:
				isBool = false
				if _, ok := rdata.ParseNumber(v); !ok {
					isFloat = false
				}
			default:
				isFloat, isBool = false, false
			}
		}
		switch {
		case !seen:
			types[i] = ColumnText
		case isFloat:
			types[i] = ColumnFloat
		case isBool:
			types[i] = ColumnBool
		default:
			types[i] = ColumnText
		}
	}
	return types
}

// coerce converts a cell to the Go value stored for a column type.
func coerce(v any, typ ColumnType) any {
	if v == nil {
		return nil
	}
	switch typ {
	case ColumnFloat:
		switch x := v.(type) {
		case float64:
			return x
		case string:
			if f, ok := rdata.ParseNumber(x); ok {
				return f
			}
			return nil
		}
		return nil
	case ColumnBool:
		b, ok := v.(bool)
		if !ok {
			return nil
		}
		return b
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// rowValues returns all rows coerced to their column types.
func rowValues(t *rdata.Table, types []ColumnType) [][]any {
	out := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		vals := make([]any, len(types))
		for c, typ := range types {
			if c < len(row) {
				vals[c] = coerce(row[c], typ)
			}
		}
		out[r] = vals
	}
	return out
}
