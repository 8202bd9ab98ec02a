// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"dataio/cli/internal/dsn"
	"dataio/cli/internal/rdata"
)

// PostgresSink writes tables with COPY over a pgx pool.
type PostgresSink struct {
	Pool *pgxpool.Pool
	opts Options
}

func openPostgres(ctx context.Context, normalized string, opts Options) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return &PostgresSink{Pool: pool, opts: opts}, nil
}

func (s *PostgresSink) Kind() dsn.DBType { return dsn.DBTypePostgreSQL }

func (s *PostgresSink) Ping(ctx context.Context) error { return s.Pool.Ping(ctx) }

func (s *PostgresSink) Close() { s.Pool.Close() }

var pgTypes = map[ColumnType]string{
	ColumnFloat: "double precision",
	ColumnBool:  "boolean",
	ColumnText:  "text",
}

// postgresCreateTable renders CREATE TABLE IF NOT EXISTS for the table.
func postgresCreateTable(table string, cols []string, types []ColumnType) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pgx.Identifier{c}.Sanitize() + " " + pgTypes[types[i]]
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgx.Identifier{table}.Sanitize(), strings.Join(defs, ", "))
}

// WriteTable creates the table and copies all rows in one transaction.
func (s *PostgresSink) WriteTable(ctx context.Context, name string, t *rdata.Table) (int64, error) {
	table := TableName(s.opts.TablePrefix, name)
	cols := columnNames(t)
	types := inferTypes(t)

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if s.opts.Replace {
		if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+pgx.Identifier{table}.Sanitize()); err != nil {
			return 0, fmt.Errorf("drop %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(ctx, postgresCreateTable(table, cols, types)); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, cols, pgx.CopyFromRows(rowValues(t, types)))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s: %w", table, err)
	}
	log.Debug().Str("table", table).Int64("rows", n).Msg("exported to postgres")
	return n, nil
}
