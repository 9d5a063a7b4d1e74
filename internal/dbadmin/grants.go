package dbadmin

import (
	"context"
	"strings"
)

// BuildGrant renders "GRANT <privs> ON <db>.<table> TO 'user'@'host'".
// The database argument takes the usual "db.*" / "db.table" form.
func BuildGrant(grant, database, user, host string) string {
	return "GRANT " + strings.ToUpper(strings.TrimSpace(grant)) +
		" ON " + quoteTarget(database) +
		" TO " + quoteAccount(user, host)
}

func quoteTarget(database string) string {
	dbPart := database
	tablePart := "*"
	if idx := strings.LastIndex(database, "."); idx >= 0 {
		dbPart = database[:idx]
		tablePart = database[idx+1:]
	}
	if dbPart != "*" {
		dbPart = quoteIdent(dbPart)
	}
	if tablePart != "*" {
		tablePart = quoteIdent(tablePart)
	}
	return dbPart + "." + tablePart
}

func (a *Admin) ListGrants(ctx context.Context, user, host string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, "SHOW GRANTS FOR "+quoteAccount(user, host))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var grant string
		if err := rows.Scan(&grant); err != nil {
			return nil, err
		}
		out = append(out, grant)
	}
	return out, rows.Err()
}

// GrantExists compares on a normalized form because the server echoes
// grants back with its own quoting and keyword casing.
func (a *Admin) GrantExists(ctx context.Context, grant, database, user, host string) (bool, error) {
	grants, err := a.ListGrants(ctx, user, host)
	if err != nil {
		return false, err
	}
	want := NormalizeGrant(BuildGrant(grant, database, user, host))
	for _, existing := range grants {
		if NormalizeGrant(existing) == want {
			return true, nil
		}
	}
	return false, nil
}

func (a *Admin) GrantAdd(ctx context.Context, grant, database, user, host string) error {
	_, err := a.db.ExecContext(ctx, BuildGrant(grant, database, user, host))
	return err
}

func (a *Admin) GrantRevoke(ctx context.Context, grant, database, user, host string) error {
	stmt := "REVOKE " + strings.ToUpper(strings.TrimSpace(grant)) +
		" ON " + quoteTarget(database) +
		" FROM " + quoteAccount(user, host)
	_, err := a.db.ExecContext(ctx, stmt)
	return err
}

// NormalizeGrant strips quoting, collapses whitespace and uppercases
// everything outside of quoted literals so two renderings of the same
// grant compare equal.
func NormalizeGrant(grant string) string {
	var b strings.Builder
	b.Grow(len(grant))
	lastSpace := false
	for _, r := range grant {
		switch r {
		case '`', '\'', '"':
			continue
		case ' ', '\t', '\n':
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	normalized := strings.TrimSpace(b.String())
	normalized = strings.ToUpper(normalized)
	// "GRANT X ON db.* TO u@h IDENTIFIED BY ..." suffixes are not part
	// of the privilege itself.
	if idx := strings.Index(normalized, " IDENTIFIED BY"); idx >= 0 {
		normalized = normalized[:idx]
	}
	return normalized
}
