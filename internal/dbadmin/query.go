package dbadmin

import (
	"context"
	"strings"
)

type QueryResult struct {
	Columns      []string        `json:"columns,omitempty"`
	Rows         [][]interface{} `json:"rows,omitempty"`
	RowsAffected int64           `json:"rows_affected"`
}

// WITH covers CTEs, which produce rows just like a bare SELECT.
var resultSetPrefixes = []string{"SELECT", "SHOW", "DESCRIBE", "EXPLAIN", "WITH"}

func returnsRows(stmt string) bool {
	upper := strings.ToUpper(strings.TrimSpace(stmt))
	for _, prefix := range resultSetPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// Query runs a raw statement. Statements producing a result set return
// columns and rows; everything else returns the affected-row count.
func (a *Admin) Query(ctx context.Context, stmt string) (*QueryResult, error) {
	trimmed := strings.TrimSpace(stmt)
	if returnsRows(trimmed) {
		rows, err := a.db.QueryContext(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		result := &QueryResult{Columns: cols}
		for rows.Next() {
			raw := make([]interface{}, len(cols))
			ptrs := make([]interface{}, len(cols))
			for i := range raw {
				ptrs[i] = &raw[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return nil, err
			}
			for i, v := range raw {
				if b, ok := v.([]byte); ok {
					raw[i] = string(b)
				}
			}
			result.Rows = append(result.Rows, raw)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		result.RowsAffected = int64(len(result.Rows))
		return result, nil
	}
	res, err := a.db.ExecContext(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &QueryResult{RowsAffected: affected}, nil
}
