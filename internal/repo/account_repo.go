package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/minionops/minionbase/internal/model"
	"github.com/minionops/minionbase/internal/pkg/dbutil"
	appErr "github.com/minionops/minionbase/internal/pkg/errors"
)

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Create(ctx context.Context, account *model.Account) error {
	row := map[string]interface{}{
		"username":      account.Username,
		"password_hash": account.PasswordHash,
		"ctime":         account.Ctime,
		"mtime":         account.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("accounts", []map[string]interface{}{row})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	where := map[string]interface{}{"username": username}
	sqlStr, args, err := builder.BuildSelect("accounts", where, []string{"username", "password_hash", "ctime", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var account model.Account
	if err := rows.Scan(&account.Username, &account.PasswordHash, &account.Ctime, &account.Mtime); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepo) UpdatePassword(ctx context.Context, username, passwordHash string, mtime int64) error {
	where := map[string]interface{}{"username": username}
	update := map[string]interface{}{
		"password_hash": passwordHash,
		"mtime":         mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("accounts", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
