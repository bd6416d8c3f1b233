package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
)

// Params describes one MySQL endpoint. Values come from the config file, the
// environment or flags; this package does not read any of those itself.
type Params struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN renders the driver connection string for the endpoint.
func (p Params) DSN() string {
	cfg := gomysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.DBName = p.Database
	cfg.ParseTime = true
	cfg.Timeout = 5 * time.Second
	return cfg.FormatDSN()
}

// Addr renders host:port for display.
func (p Params) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Connect opens a pool for the endpoint. Opening is lazy; use TestConnection
// to verify the endpoint actually answers.
func Connect(p Params) (*sql.DB, error) {
	db, err := sql.Open("mysql", p.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening %s/%s: %w", p.Addr(), p.Database, err)
	}
	return db, nil
}

// TestConnection verifies the endpoint accepts connections and closes the
// probe pool before returning.
func TestConnection(ctx context.Context, p Params) error {
	db, err := Connect(p)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.PingContext(ctx)
}
