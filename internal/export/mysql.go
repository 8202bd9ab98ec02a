// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"dataio/cli/internal/dsn"
	"dataio/cli/internal/rdata"
)

const (
	// insertBatch bounds the rows per INSERT statement.
	insertBatch = 500
	// maxPlaceholders is the MySQL limit of parameters per prepared statement.
	maxPlaceholders = 65535
)

// batchRows is the number of rows per INSERT for a table with cols columns.
func batchRows(cols int) int {
	if cols < 1 {
		return insertBatch
	}
	return max(1, min(insertBatch, maxPlaceholders/cols))
}

// MySQLSink writes tables with batched INSERTs over database/sql.
type MySQLSink struct {
	DB   *sql.DB
	opts Options
}

func openMySQL(ctx context.Context, normalized string, opts Options) (*MySQLSink, error) {
	cfg, err := mysql.ParseDSN(normalized)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return &MySQLSink{DB: sql.OpenDB(connector), opts: opts}, nil
}

func (s *MySQLSink) Kind() dsn.DBType { return dsn.DBTypeMySQL }

func (s *MySQLSink) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *MySQLSink) Close() { _ = s.DB.Close() }

var mysqlTypes = map[ColumnType]string{
	ColumnFloat: "DOUBLE",
	ColumnBool:  "BOOLEAN",
	ColumnText:  "TEXT",
}

// quoteMySQL quotes an identifier with backticks.
func quoteMySQL(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func mysqlCreateTable(table string, cols []string, types []ColumnType) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteMySQL(c) + " " + mysqlTypes[types[i]] + " NULL"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteMySQL(table), strings.Join(defs, ", "))
}

// mysqlInsert renders a multi-row INSERT with placeholders for rows rows.
func mysqlInsert(table string, cols []string, rows int) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteMySQL(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	tuples := make([]string, rows)
	for i := range tuples {
		tuples[i] = tuple
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", quoteMySQL(table), strings.Join(quoted, ", "), strings.Join(tuples, ", "))
}

// WriteTable creates the table and inserts all rows in one transaction.
func (s *MySQLSink) WriteTable(ctx context.Context, name string, t *rdata.Table) (int64, error) {
	table := TableName(s.opts.TablePrefix, name)
	cols := columnNames(t)
	types := inferTypes(t)
	rows := rowValues(t, types)

	// DDL commits implicitly in MySQL, so it runs outside the transaction.
	if s.opts.Replace {
		if _, err := s.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteMySQL(table)); err != nil {
			return 0, fmt.Errorf("drop %s: %w", table, err)
		}
	}
	if _, err := s.DB.ExecContext(ctx, mysqlCreateTable(table, cols, types)); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var total int64
	batch := batchRows(len(cols))
	for start := 0; start < len(rows); start += batch {
		end := min(start+batch, len(rows))
		args := make([]any, 0, (end-start)*len(cols))
		for _, r := range rows[start:end] {
			args = append(args, r...)
		}
		res, err := tx.ExecContext(ctx, mysqlInsert(table, cols, end-start), args...)
		if err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", table, err)
	}
	log.Debug().Str("table", table).Int64("rows", total).Msg("exported to mysql")
	return total, nil
}
