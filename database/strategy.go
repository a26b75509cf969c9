package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"invcost/config"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// Strategy opens a connection to the ERP database. The returned *sqlx.DB is
// the whole capability set the source needs: QueryxContext to execute and
// Close to disconnect.
type Strategy interface {
	Name() string
	// Target describes the connection for logs and messages, without secrets.
	Target() string
	Connect(ctx context.Context) (*sqlx.DB, error)
}

// driverStrategy connects through a registered database/sql driver.
type driverStrategy struct {
	name   string
	driver string
	dsn    string
	target string
}

func (s *driverStrategy) Name() string   { return s.name }
func (s *driverStrategy) Target() string { return s.target }

func (s *driverStrategy) Connect(ctx context.Context) (*sqlx.DB, error) {
	// ConnectContext pings and closes the handle itself when the ping fails.
	return sqlx.ConnectContext(ctx, s.driver, s.dsn)
}

// errorStrategy reports a configuration problem when a connection is attempted,
// so the dashboard shows it like any other connection failure.
type errorStrategy struct {
	name string
	err  error
}

func (s *errorStrategy) Name() string   { return s.name }
func (s *errorStrategy) Target() string { return "unconfigured" }
func (s *errorStrategy) Connect(context.Context) (*sqlx.DB, error) {
	return nil, s.err
}

// NewStrategy picks the connection strategy named by DB_CONNECTION.
func NewStrategy(cfg config.Config) Strategy {
	switch cfg.DBConnection {
	case config.ConnectionODBC:
		return &driverStrategy{
			name:   config.ConnectionODBC,
			driver: "odbc",
			dsn:    ODBCConnectionString(cfg),
			target: describeTarget(cfg),
		}
	default:
		driver, dsn, err := SQLDataSource(cfg)
		if err != nil {
			return &errorStrategy{name: config.ConnectionSQL, err: err}
		}
		return &driverStrategy{
			name:   config.ConnectionSQL,
			driver: driver,
			dsn:    dsn,
			target: describeTarget(cfg),
		}
	}
}

// SQLDataSource returns the driver name and DSN for DB_TYPE.
func SQLDataSource(cfg config.Config) (driver, dsn string, err error) {
	hostPort := net.JoinHostPort(cfg.DBServer, cfg.DBPort)

	switch cfg.DBType {
	case "mssql":
		u := &url.URL{Scheme: "sqlserver", Host: hostPort}
		q := url.Values{}
		q.Set("database", cfg.DBName)
		q.Set("app name", "invcost")
		if cfg.UsesIntegratedAuth() {
			// go-mssqldb falls back to integrated (SSPI/Kerberos) auth without a user.
			u.Host = cfg.DBServer
		} else {
			u.User = url.UserPassword(cfg.DBUser, cfg.DBPassword)
		}
		u.RawQuery = q.Encode()
		return "sqlserver", u.String(), nil

	case "postgresql", "postgres":
		u := &url.URL{Scheme: "postgres", Host: hostPort, Path: "/" + cfg.DBName}
		if cfg.DBUser != "" {
			u.User = url.UserPassword(cfg.DBUser, cfg.DBPassword)
		}
		return "pgx", u.String(), nil

	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = hostPort
		mc.DBName = cfg.DBName
		return "mysql", mc.FormatDSN(), nil

	case "sqlite", "sqlite3":
		return "sqlite3", "file:" + cfg.DBName + "?mode=ro&_busy_timeout=5000", nil
	}
	return "", "", fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

// ODBCConnectionString builds a direct ODBC connection string. Without a
// user it asks the driver for a trusted connection.
func ODBCConnectionString(cfg config.Config) string {
	parts := []string{
		"Driver={" + cfg.DBDriver + "}",
		"Server=" + cfg.DBServer + "," + cfg.DBPort,
		"Database=" + cfg.DBName,
	}
	if cfg.UsesIntegratedAuth() {
		parts = append(parts, "Trusted_Connection=yes")
	} else {
		parts = append(parts, "UID="+cfg.DBUser, "PWD="+cfg.DBPassword)
	}
	return strings.Join(parts, ";") + ";"
}

func describeTarget(cfg config.Config) string {
	switch cfg.DBType {
	case "sqlite", "sqlite3":
		return "sqlite " + cfg.DBName
	}
	auth := "user " + cfg.DBUser
	if cfg.UsesIntegratedAuth() {
		auth = "integrated auth"
	}
	return fmt.Sprintf("%s %s:%s/%s, %s", cfg.DBType, cfg.DBServer, cfg.DBPort, cfg.DBName, auth)
}
