package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/minionops/minionbase/internal/pkg/dbutil"
	appErr "github.com/minionops/minionbase/internal/pkg/errors"
)

// CacheRepo persists minion cache data keyed by (bank, cache_key).
// The table name comes from operator config and is trusted input; it is
// interpolated into queries the same way the schema docs describe.
type CacheRepo struct {
	db     *sql.DB
	driver string
	table  string
}

func NewCacheRepo(db *sql.DB, driver, table string) *CacheRepo {
	return &CacheRepo{db: db, driver: driver, table: table}
}

func (r *CacheRepo) Store(ctx context.Context, bank, key string, data []byte) error {
	if r.driver == dbutil.DriverPostgres {
		query := fmt.Sprintf(
			"INSERT INTO %s (bank, cache_key, data, last_update) VALUES (?, ?, ?, NOW()) "+
				"ON CONFLICT (bank, cache_key) DO UPDATE SET data = EXCLUDED.data, last_update = NOW()",
			r.table)
		query, args := dbutil.Finalize(query, []interface{}{bank, key, data})
		return dbutil.WithRetry(ctx, func() error {
			_, err := r.db.ExecContext(ctx, query, args...)
			return err
		})
	}
	row := map[string]interface{}{
		"bank":      bank,
		"cache_key": key,
		"data":      data,
	}
	sqlStr, args, err := builder.BuildReplaceInsert(r.table, []map[string]interface{}{row})
	if err != nil {
		return err
	}
	return dbutil.WithRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		// REPLACE reports 1 for an insert and 2 for delete+insert.
		cnt, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if cnt != 1 && cnt != 2 {
			return fmt.Errorf("storing %s %s affected %d rows", bank, key, cnt)
		}
		return nil
	})
}

func (r *CacheRepo) Fetch(ctx context.Context, bank, key string) ([]byte, error) {
	query := fmt.Sprintf("SELECT data FROM %s WHERE bank=? AND cache_key=?", r.table)
	query, args := dbutil.Finalize(query, []interface{}{bank, key})
	var data []byte
	err := dbutil.WithRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	})
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *CacheRepo) Flush(ctx context.Context, bank string, key *string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE bank=?", r.table)
	args := []interface{}{bank}
	if key != nil {
		query += " AND cache_key=?"
		args = append(args, *key)
	}
	query, args = dbutil.Finalize(query, args)
	return dbutil.WithRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query, args...)
		return err
	})
}

func (r *CacheRepo) ListKeys(ctx context.Context, bank string) ([]string, error) {
	query := fmt.Sprintf("SELECT cache_key FROM %s WHERE bank=?", r.table)
	query, args := dbutil.Finalize(query, []interface{}{bank})
	return r.selectStrings(ctx, query, args)
}

func (r *CacheRepo) ListBanks(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT bank FROM %s", r.table)
	return r.selectStrings(ctx, query, nil)
}

func (r *CacheRepo) Contains(ctx context.Context, bank string, key *string) (bool, error) {
	query := fmt.Sprintf("SELECT COUNT(data) FROM %s WHERE bank=?", r.table)
	args := []interface{}{bank}
	if key != nil {
		query += " AND cache_key=?"
		args = append(args, *key)
	}
	query, args = dbutil.Finalize(query, args)
	var cnt int64
	err := dbutil.WithRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(&cnt)
	})
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *CacheRepo) Updated(ctx context.Context, bank, key string) (int64, error) {
	expr := "UNIX_TIMESTAMP(last_update)"
	if r.driver == dbutil.DriverPostgres {
		expr = "EXTRACT(EPOCH FROM last_update)::BIGINT"
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE bank=? AND cache_key=?", expr, r.table)
	query, args := dbutil.Finalize(query, []interface{}{bank, key})
	var ts int64
	err := dbutil.WithRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(&ts)
	})
	if err == sql.ErrNoRows {
		return 0, appErr.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return ts, nil
}

func (r *CacheRepo) selectStrings(ctx context.Context, query string, args []interface{}) ([]string, error) {
	var out []string
	err := dbutil.WithRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		out = out[:0]
		for rows.Next() {
			var value string
			if err := rows.Scan(&value); err != nil {
				return err
			}
			out = append(out, value)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
