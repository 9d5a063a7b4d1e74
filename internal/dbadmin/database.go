package dbadmin

import (
	"context"
	"database/sql"

	appErr "github.com/minionops/minionbase/internal/pkg/errors"
)

type DatabaseInfo struct {
	Name         string `json:"name"`
	CharacterSet string `json:"character_set"`
	Collate      string `json:"collate"`
}

func (a *Admin) ListDatabases(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT SCHEMA_NAME FROM information_schema.SCHEMATA")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (a *Admin) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := a.db.QueryRowContext(ctx,
		"SELECT SCHEMA_NAME FROM information_schema.SCHEMATA WHERE SCHEMA_NAME=?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *Admin) GetDatabase(ctx context.Context, name string) (*DatabaseInfo, error) {
	var info DatabaseInfo
	err := a.db.QueryRowContext(ctx,
		"SELECT SCHEMA_NAME, DEFAULT_CHARACTER_SET_NAME, DEFAULT_COLLATION_NAME "+
			"FROM information_schema.SCHEMATA WHERE SCHEMA_NAME=?", name).
		Scan(&info.Name, &info.CharacterSet, &info.Collate)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (a *Admin) CreateDatabase(ctx context.Context, name, characterSet, collate string) error {
	stmt := "CREATE DATABASE " + quoteIdent(name)
	if characterSet != "" {
		stmt += " CHARACTER SET " + quoteString(characterSet)
	}
	if collate != "" {
		stmt += " COLLATE " + quoteString(collate)
	}
	_, err := a.db.ExecContext(ctx, stmt)
	return err
}

func (a *Admin) AlterDatabase(ctx context.Context, name, characterSet, collate string) error {
	if characterSet == "" && collate == "" {
		return nil
	}
	stmt := "ALTER DATABASE " + quoteIdent(name)
	if characterSet != "" {
		stmt += " CHARACTER SET " + quoteString(characterSet)
	}
	if collate != "" {
		stmt += " COLLATE " + quoteString(collate)
	}
	_, err := a.db.ExecContext(ctx, stmt)
	return err
}

func (a *Admin) RemoveDatabase(ctx context.Context, name string) error {
	_, err := a.db.ExecContext(ctx, "DROP DATABASE "+quoteIdent(name))
	return err
}
