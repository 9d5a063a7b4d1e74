package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/minionops/minionbase/internal/model"
	"github.com/minionops/minionbase/internal/pkg/dbutil"
	appErr "github.com/minionops/minionbase/internal/pkg/errors"
)

type ReturnRepo struct {
	db     *sql.DB
	driver string
}

func NewReturnRepo(db *sql.DB, driver string) *ReturnRepo {
	return &ReturnRepo{db: db, driver: driver}
}

func (r *ReturnRepo) epochExpr(col string) string {
	if r.driver == dbutil.DriverPostgres {
		return fmt.Sprintf("EXTRACT(EPOCH FROM %s)::BIGINT", col)
	}
	return fmt.Sprintf("UNIX_TIMESTAMP(%s)", col)
}

func (r *ReturnRepo) cutoffExpr() string {
	if r.driver == dbutil.DriverPostgres {
		return "alter_time < TO_TIMESTAMP(?)"
	}
	return "alter_time < FROM_UNIXTIME(?)"
}

func (r *ReturnRepo) InsertReturn(ctx context.Context, ret *model.JobReturn) error {
	success := 0
	if ret.Success {
		success = 1
	}
	row := map[string]interface{}{
		"jid":       ret.JID,
		"minion_id": ret.MinionID,
		"fun":       ret.Fun,
		"success":   success,
		"ret":       ret.Ret,
		"full_ret":  ret.FullRet,
	}
	sqlStr, args, err := builder.BuildInsert("job_returns", []map[string]interface{}{row})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// SaveLoad is idempotent: a duplicate jid keeps the first payload, the
// way masters re-publish loads on retry.
func (r *ReturnRepo) SaveLoad(ctx context.Context, jid string, payload []byte) error {
	row := map[string]interface{}{
		"jid":     jid,
		"payload": payload,
	}
	sqlStr, args, err := builder.BuildInsert("job_loads", []map[string]interface{}{row})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return nil
		}
		return err
	}
	return nil
}

func (r *ReturnRepo) GetLoad(ctx context.Context, jid string) ([]byte, error) {
	sqlStr, args, err := builder.BuildSelect("job_loads", map[string]interface{}{"jid": jid}, []string{"payload"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var payload []byte
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

func (r *ReturnRepo) GetByJID(ctx context.Context, jid string) ([]*model.JobReturn, error) {
	query := fmt.Sprintf(
		"SELECT id, jid, minion_id, fun, success, ret, full_ret, %s FROM job_returns WHERE jid=?",
		r.epochExpr("alter_time"))
	query, args := dbutil.Finalize(query, []interface{}{jid})
	return r.selectReturns(ctx, query, args)
}

// GetByFun returns the most recent return per minion for a function.
func (r *ReturnRepo) GetByFun(ctx context.Context, fun string) ([]*model.JobReturn, error) {
	query := fmt.Sprintf(
		"SELECT jr.id, jr.jid, jr.minion_id, jr.fun, jr.success, jr.ret, jr.full_ret, %s "+
			"FROM job_returns jr JOIN ("+
			"SELECT minion_id, MAX(alter_time) AS max_time FROM job_returns WHERE fun=? GROUP BY minion_id"+
			") latest ON jr.minion_id = latest.minion_id AND jr.alter_time = latest.max_time "+
			"WHERE jr.fun=?",
		r.epochExpr("jr.alter_time"))
	query, args := dbutil.Finalize(query, []interface{}{fun, fun})
	return r.selectReturns(ctx, query, args)
}

func (r *ReturnRepo) ListJIDs(ctx context.Context) ([]*model.JobLoad, error) {
	query := fmt.Sprintf("SELECT jid, payload, %s FROM job_loads", r.epochExpr("alter_time"))
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.JobLoad
	for rows.Next() {
		var load model.JobLoad
		if err := rows.Scan(&load.JID, &load.Payload, &load.AlterTime); err != nil {
			return nil, err
		}
		out = append(out, &load)
	}
	return out, rows.Err()
}

func (r *ReturnRepo) ListMinions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT minion_id FROM job_returns")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *ReturnRepo) SelectReturnsBefore(ctx context.Context, cutoff int64) ([]*model.JobReturn, error) {
	query := fmt.Sprintf(
		"SELECT id, jid, minion_id, fun, success, ret, full_ret, %s FROM job_returns WHERE %s",
		r.epochExpr("alter_time"), r.cutoffExpr())
	query, args := dbutil.Finalize(query, []interface{}{cutoff})
	return r.selectReturns(ctx, query, args)
}

func (r *ReturnRepo) DeleteReturnsBefore(ctx context.Context, cutoff int64) (int64, error) {
	query := "DELETE FROM job_returns WHERE " + r.cutoffExpr()
	query, args := dbutil.Finalize(query, []interface{}{cutoff})
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ReturnRepo) DeleteLoadsBefore(ctx context.Context, cutoff int64) (int64, error) {
	query := "DELETE FROM job_loads WHERE " + r.cutoffExpr()
	query, args := dbutil.Finalize(query, []interface{}{cutoff})
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ReturnRepo) selectReturns(ctx context.Context, query string, args []interface{}) ([]*model.JobReturn, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.JobReturn
	for rows.Next() {
		var ret model.JobReturn
		var success int
		if err := rows.Scan(&ret.ID, &ret.JID, &ret.MinionID, &ret.Fun, &success, &ret.Ret, &ret.FullRet, &ret.AlterTime); err != nil {
			return nil, err
		}
		ret.Success = success != 0
		out = append(out, &ret)
	}
	return out, rows.Err()
}
