package dbadmin

import (
	"context"
	"database/sql"
)

type UserInfo struct {
	User string `json:"user"`
	Host string `json:"host"`
}

func (a *Admin) ListUsers(ctx context.Context) ([]UserInfo, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT User, Host FROM mysql.user")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []UserInfo
	for rows.Next() {
		var info UserInfo
		if err := rows.Scan(&info.User, &info.Host); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (a *Admin) UserExists(ctx context.Context, user, host string) (bool, error) {
	if host == "" {
		host = "localhost"
	}
	var one int
	err := a.db.QueryRowContext(ctx,
		"SELECT 1 FROM mysql.user WHERE User=? AND Host=?", user, host).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *Admin) CreateUser(ctx context.Context, user, host, plainPassword string) error {
	stmt := "CREATE USER " + quoteAccount(user, host)
	if plainPassword != "" {
		stmt += " IDENTIFIED BY " + quoteString(plainPassword)
	}
	_, err := a.db.ExecContext(ctx, stmt)
	return err
}

func (a *Admin) ChangeUserPassword(ctx context.Context, user, host, plainPassword string) error {
	stmt := "ALTER USER " + quoteAccount(user, host) + " IDENTIFIED BY " + quoteString(plainPassword)
	_, err := a.db.ExecContext(ctx, stmt)
	return err
}

func (a *Admin) RemoveUser(ctx context.Context, user, host string) error {
	_, err := a.db.ExecContext(ctx, "DROP USER "+quoteAccount(user, host))
	return err
}
