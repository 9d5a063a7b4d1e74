package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/minionops/minionbase/internal/model"
	"github.com/minionops/minionbase/internal/pkg/dbutil"
)

type EventRepo struct {
	db     *sql.DB
	driver string
}

func NewEventRepo(db *sql.DB, driver string) *EventRepo {
	return &EventRepo{db: db, driver: driver}
}

func (r *EventRepo) Insert(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(events))
	for _, ev := range events {
		rows = append(rows, map[string]interface{}{
			"tag":       ev.Tag,
			"data":      ev.Data,
			"master_id": ev.MasterID,
		})
	}
	sqlStr, args, err := builder.BuildInsert("events", rows)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *EventRepo) ListByTag(ctx context.Context, tag string, limit uint) ([]*model.Event, error) {
	epoch := "UNIX_TIMESTAMP(alter_time)"
	if r.driver == dbutil.DriverPostgres {
		epoch = "EXTRACT(EPOCH FROM alter_time)::BIGINT"
	}
	query := fmt.Sprintf("SELECT id, tag, data, master_id, %s FROM events WHERE tag=? ORDER BY id DESC", epoch)
	args := []interface{}{tag}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	query, args = dbutil.Finalize(query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Event
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Tag, &ev.Data, &ev.MasterID, &ev.AlterTime); err != nil {
			return nil, err
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

func (r *EventRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	cond := "alter_time < FROM_UNIXTIME(?)"
	if r.driver == dbutil.DriverPostgres {
		cond = "alter_time < TO_TIMESTAMP(?)"
	}
	query, args := dbutil.Finalize("DELETE FROM events WHERE "+cond, []interface{}{cutoff})
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
