// Package dbadmin is the execution layer for managing the MySQL server
// itself: databases, users and grants. Object names come from operator
// input and are treated as trusted, but identifiers and literals are
// still quoted because DDL statements cannot take placeholders.
package dbadmin

import (
	"database/sql"
	"strings"
)

type Admin struct {
	db *sql.DB
}

func New(db *sql.DB) *Admin {
	return &Admin{db: db}
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}

// quoteAccount renders 'user'@'host' the way MySQL account management
// statements expect.
func quoteAccount(user, host string) string {
	if host == "" {
		host = "localhost"
	}
	return quoteString(user) + "@" + quoteString(host)
}
