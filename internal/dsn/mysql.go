// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQLResolver handles mysql:// URLs and native driver DSNs.
type MySQLResolver struct{}

// NewMySQLResolver creates a new MySQL resolver
func NewMySQLResolver() *MySQLResolver {
	return &MySQLResolver{}
}

// Parse parses either form of MySQL DSN.
func (r *MySQLResolver) Parse(dsn string) (*DSNInfo, error) {
	if strings.HasPrefix(strings.ToLower(dsn), "mysql://") {
		return parseURLForm(dsn, DBTypeMySQL, []string{"mysql://"}, "3306")
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, NewParseError(dsn, err.Error(), "format should be user:password@tcp(host:3306)/database")
	}
	info := &DSNInfo{
		Type:     DBTypeMySQL,
		User:     cfg.User,
		Password: cfg.Passwd,
		Database: cfg.DBName,
		Params:   map[string]string{},
		Original: dsn,
	}
	for k, v := range cfg.Params {
		info.Params[k] = v
	}
	host, port, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		host, port = cfg.Addr, "3306"
	}
	info.Host, info.Port = host, port

	if info.User == "" {
		return nil, NewParseError(dsn, "missing username", "format should be user:password@tcp(host:3306)/database")
	}
	if info.Database == "" {
		return nil, NewParseError(dsn, "missing database name", "format should be user:password@tcp(host:3306)/database")
	}
	return info, nil
}

// Normalize renders info in the go-sql-driver form.
func (r *MySQLResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	cfg := mysql.NewConfig()
	cfg.User = info.User
	cfg.Passwd = info.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(info.Host, info.Port)
	cfg.DBName = info.Database
	if len(info.Params) > 0 {
		cfg.Params = make(map[string]string, len(info.Params))
		for _, k := range sortedKeys(info.Params) {
			cfg.Params[k] = info.Params[k]
		}
	}
	return cfg.FormatDSN(), nil
}

// Validate checks the DSN and that the driver accepts its normalized form.
func (r *MySQLResolver) Validate(dsn string) error {
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
	if _, err := mysql.ParseDSN(normalized); err != nil {
		return NewParseError(dsn, err.Error(), "check connection parameters")
	}
	return nil
}
