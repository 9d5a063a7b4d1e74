package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/minionops/minionbase/internal/dbadmin"
	appErr "github.com/minionops/minionbase/internal/pkg/errors"
)

type DatabaseAdmin interface {
	GetDatabase(ctx context.Context, name string) (*dbadmin.DatabaseInfo, error)
	CreateDatabase(ctx context.Context, name, characterSet, collate string) error
	AlterDatabase(ctx context.Context, name, characterSet, collate string) error
	RemoveDatabase(ctx context.Context, name string) error
}

type Database struct {
	admin DatabaseAdmin
}

func NewDatabase(admin DatabaseAdmin) *Database {
	return &Database{admin: admin}
}

// Present ensures the named database exists with the requested character
// set and collation. Empty characterSet/collate mean "don't care".
func (s *Database) Present(ctx context.Context, name, characterSet, collate string, test bool) Result {
	ret := newResult(name)
	existing, err := s.admin.GetDatabase(ctx, name)
	if err != nil && !appErr.IsNotFound(err) {
		ret.fail(fmt.Sprintf("Failed to inspect database %s (%v)", name, err))
		return ret
	}
	if existing == nil {
		if test {
			ret.pend(fmt.Sprintf("Database %s is not present and needs to be created", name))
			return ret
		}
		if err := s.admin.CreateDatabase(ctx, name, characterSet, collate); err != nil {
			ret.fail(fmt.Sprintf("Failed to create database %s (%v)", name, err))
			return ret
		}
		ret.Changes[name] = "Present"
		ret.succeed(fmt.Sprintf("The database %s has been created", name))
		return ret
	}

	var comments []string
	alterCharset := characterSet != "" && characterSet != existing.CharacterSet
	alterCollate := collate != "" && collate != existing.Collate
	if alterCharset {
		comments = append(comments, fmt.Sprintf(
			"Database character set %s != %s needs to be updated", characterSet, existing.CharacterSet))
	}
	if alterCollate {
		comments = append(comments, fmt.Sprintf(
			"Database collate %s != %s needs to be updated", collate, existing.Collate))
	}
	if !alterCharset && !alterCollate {
		ret.succeed(fmt.Sprintf("Database %s is already present", name))
		return ret
	}
	if test {
		ret.pend(append(comments, fmt.Sprintf("Database %s is going to be updated", name))...)
		return ret
	}
	newCharset := ""
	if alterCharset {
		newCharset = characterSet
	}
	newCollate := ""
	if alterCollate {
		newCollate = collate
	}
	if err := s.admin.AlterDatabase(ctx, name, newCharset, newCollate); err != nil {
		ret.fail(fmt.Sprintf("Failed to update database %s (%v)", name, err))
		return ret
	}
	updated, err := s.admin.GetDatabase(ctx, name)
	if err == nil && updated != nil {
		if alterCharset && updated.CharacterSet == characterSet {
			ret.Changes["character_set"] = characterSet
		}
		if alterCollate && updated.Collate == collate {
			ret.Changes["collate"] = collate
		}
	}
	ret.succeed(strings.Join(comments, "\n"))
	return ret
}

func (s *Database) Absent(ctx context.Context, name string, test bool) Result {
	ret := newResult(name)
	_, err := s.admin.GetDatabase(ctx, name)
	if appErr.IsNotFound(err) {
		ret.succeed(fmt.Sprintf("Database %s is not present", name))
		return ret
	}
	if err != nil {
		ret.fail(fmt.Sprintf("Failed to inspect database %s (%v)", name, err))
		return ret
	}
	if test {
		ret.pend(fmt.Sprintf("Database %s is present and needs to be removed", name))
		return ret
	}
	if err := s.admin.RemoveDatabase(ctx, name); err != nil {
		ret.fail(fmt.Sprintf("Unable to remove database %s (%v)", name, err))
		return ret
	}
	ret.Changes[name] = "Absent"
	ret.succeed(fmt.Sprintf("Database %s has been removed", name))
	return ret
}
