package dbutil

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalizeMySQLKeepsQuestionMarks(t *testing.T) {
	SetDialect(DriverMySQL)
	defer SetDialect(DriverMySQL)

	query, args := Finalize("SELECT data FROM cache_entries WHERE bank = ? AND cache_key = ?", []interface{}{"minions", "web1"})
	require.Equal(t, "SELECT data FROM cache_entries WHERE bank = ? AND cache_key = ?", query)
	require.Equal(t, []interface{}{"minions", "web1"}, args)
}

func TestFinalizePostgresRebinds(t *testing.T) {
	SetDialect(DriverPostgres)
	defer SetDialect(DriverMySQL)

	query, _ := Finalize("SELECT data FROM cache_entries WHERE bank = ? AND cache_key = ?", nil)
	require.Equal(t, "SELECT data FROM cache_entries WHERE bank = $1 AND cache_key = $2", query)
}

func TestWithRetryStopsOnNonConnError(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	err := WithRetry(context.Background(), func() error {
		calls++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, calls)
}

func TestWithRetryRetriesLostConnections(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return driver.ErrBadConn
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return driver.ErrBadConn
	})
	require.ErrorIs(t, err, driver.ErrBadConn)
	require.Equal(t, 4, calls)
}

func TestWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetry(ctx, func() error {
		return driver.ErrBadConn
	})
	require.ErrorIs(t, err, context.Canceled)
}
