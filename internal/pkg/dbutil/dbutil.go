// Package dbutil papers over the differences between the mysql and
// postgres drivers: placeholder binding, duplicate-key detection and
// lost-connection detection for the retry path.
package dbutil

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const (
	reconnectInterval = 50 * time.Millisecond
	maxRetries        = 3
)

var bindType atomic.Int32

func init() {
	bindType.Store(int32(sqlx.QUESTION))
}

// SetDialect configures placeholder rebinding for the active driver.
// Called once at startup before any repo runs a query.
func SetDialect(driverName string) {
	if driverName == DriverPostgres {
		bindType.Store(int32(sqlx.DOLLAR))
		return
	}
	bindType.Store(int32(sqlx.QUESTION))
}

// Finalize rebinds a gendry-built query (always `?` placeholders) to
// whatever the active driver expects.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	bt := int(bindType.Load())
	if bt == sqlx.QUESTION {
		return query, args
	}
	return sqlx.Rebind(bt, query), args
}

func IsConflict(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isConnErr(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn)
}

// WithRetry reruns fn after a short pause when the connection to the
// server was lost mid-call. Mirrors the reconnect loop the cache layer
// has always had: up to 3 attempts, 50ms apart.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil || !isConnErr(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectInterval):
		}
	}
	return err
}
