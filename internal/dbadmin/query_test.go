package dbadmin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		stmt string
		want bool
	}{
		{"SELECT 1", true},
		{"  select * from mysql.user", true},
		{"SHOW DATABASES", true},
		{"DESCRIBE accounts", true},
		{"EXPLAIN SELECT 1", true},
		{"WITH recent AS (SELECT jid FROM job_returns) SELECT * FROM recent", true},
		{"with t as (select 1) select * from t", true},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a = 1", false},
		{"DELETE FROM t", false},
		{"CREATE DATABASE d", false},
		{"DROP TABLE t", false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, returnsRows(tc.stmt), "stmt: %s", tc.stmt)
	}
}
