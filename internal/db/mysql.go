// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const defaultMySQLPort = 3306

// mysqlDSN builds a go-sql-driver DSN from discrete connection parameters.
// parseTime is always on so created_at scans into time.Time.
func mysqlDSN(p ConnParams) string {
	port := p.Port
	if port == 0 {
		port = defaultMySQLPort
	}
	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(p.hostOrDefault(), strconv.Itoa(port))
	cfg.DBName = p.Name
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	setGroupConcatMaxLen(cfg)
	return cfg.FormatDSN()
}

// groupConcatMaxLen lifts the 1024 byte default that would silently cut
// the aggregated phone list of a client with many numbers.
const groupConcatMaxLen = "1048576"

// setGroupConcatMaxLen adds the session variable to cfg unless the DSN
// already sets it. The driver issues a SET for every unknown param.
func setGroupConcatMaxLen(cfg *mysql.Config) {
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["group_concat_max_len"]; !ok {
		cfg.Params["group_concat_max_len"] = groupConcatMaxLen
	}
}

// withMySQLSessionParams returns dsn with the session variables the
// aggregated queries rely on.
func withMySQLSessionParams(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("%w: mysql dsn: %w", ErrValidation, err)
	}
	setGroupConcatMaxLen(cfg)
	return cfg.FormatDSN(), nil
}

// mysqlIdent quotes a MySQL identifier with backticks.
func mysqlIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ensureMySQLDatabase connects without selecting a database and creates the
// one named by dsn if it is missing.
func ensureMySQLDatabase(ctx context.Context, dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("%w: parse mysql dsn: %w", ErrConnectivity, err)
	}
	name := cfg.DBName
	if name == "" {
		return nil
	}
	cfg.DBName = ""

	sqlDB, err := sqlOpenFunc(EngineMySQL.DriverName(), cfg.FormatDSN())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	defer func() { _ = sqlDB.Close() }()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	if _, err := sqlDB.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+mysqlIdent(name)+" CHARACTER SET utf8mb4"); err != nil {
		return fmt.Errorf("%w: create database %s: %w", ErrSchema, name, err)
	}
	dbLogf("db: ensured mysql database %s", name)
	return nil
}
