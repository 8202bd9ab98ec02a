// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQLResolver handles PostgreSQL DSN parsing and normalization
type PostgreSQLResolver struct{}

// NewPostgreSQLResolver creates a new PostgreSQL resolver
func NewPostgreSQLResolver() *PostgreSQLResolver {
	return &PostgreSQLResolver{}
}

// Parse parses a postgres:// or postgresql:// DSN.
func (r *PostgreSQLResolver) Parse(dsn string) (*DSNInfo, error) {
	return parseURLForm(dsn, DBTypePostgreSQL, []string{"postgresql://", "postgres://"}, "5432")
}

// Normalize renders info as a postgresql:// URL with escaped credentials
// and sorted parameters.
func (r *PostgreSQLResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	u := url.URL{
		Scheme: "postgresql",
		Host:   info.Host,
		Path:   "/" + info.Database,
	}
	if info.Port != "" {
		u.Host = info.Host + ":" + info.Port
	}
	if info.Password != "" {
		u.User = url.UserPassword(info.User, info.Password)
	} else {
		u.User = url.User(info.User)
	}
	if len(info.Params) > 0 {
		parts := make([]string, 0, len(info.Params))
		for _, k := range sortedKeys(info.Params) {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(info.Params[k]))
		}
		u.RawQuery = strings.Join(parts, "&")
	}
	return u.String(), nil
}

// Validate parses dsn and checks that pgx accepts the normalized form.
func (r *PostgreSQLResolver) Validate(dsn string) error {
	info, err := r.Parse(dsn)
	if err != nil {
		return err
	}
	if _, err := strconv.Atoi(info.Port); err != nil {
		return NewParseError(dsn, "invalid port number: "+info.Port, "port must be numeric")
	}
	normalized, err := r.Normalize(info)
	if err != nil {
		return err
	}
	if _, err := pgconn.ParseConfig(normalized); err != nil {
		return NewParseError(dsn, err.Error(), "check connection parameters")
	}
	return nil
}
