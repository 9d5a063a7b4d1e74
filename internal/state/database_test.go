package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minionops/minionbase/internal/dbadmin"
	appErr "github.com/minionops/minionbase/internal/pkg/errors"
)

type fakeDatabaseAdmin struct {
	databases map[string]*dbadmin.DatabaseInfo

	createErr error
	alterErr  error
	removeErr error
}

func newFakeDatabaseAdmin() *fakeDatabaseAdmin {
	return &fakeDatabaseAdmin{databases: map[string]*dbadmin.DatabaseInfo{}}
}

func (f *fakeDatabaseAdmin) GetDatabase(ctx context.Context, name string) (*dbadmin.DatabaseInfo, error) {
	info, ok := f.databases[name]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return info, nil
}

func (f *fakeDatabaseAdmin) CreateDatabase(ctx context.Context, name, characterSet, collate string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.databases[name] = &dbadmin.DatabaseInfo{Name: name, CharacterSet: characterSet, Collate: collate}
	return nil
}

func (f *fakeDatabaseAdmin) AlterDatabase(ctx context.Context, name, characterSet, collate string) error {
	if f.alterErr != nil {
		return f.alterErr
	}
	info := f.databases[name]
	if characterSet != "" {
		info.CharacterSet = characterSet
	}
	if collate != "" {
		info.Collate = collate
	}
	return nil
}

func (f *fakeDatabaseAdmin) RemoveDatabase(ctx context.Context, name string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.databases, name)
	return nil
}

func TestDatabasePresentCreates(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	ret := NewDatabase(admin).Present(context.Background(), "testdb", "", "", false)
	require.NotNil(t, ret.Result)
	require.True(t, *ret.Result)
	require.Equal(t, "The database testdb has been created", ret.Comment)
	require.Equal(t, map[string]interface{}{"testdb": "Present"}, ret.Changes)
	require.Contains(t, admin.databases, "testdb")
}

func TestDatabasePresentTestMode(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	ret := NewDatabase(admin).Present(context.Background(), "testdb", "", "", true)
	require.Nil(t, ret.Result)
	require.Equal(t, "Database testdb is not present and needs to be created", ret.Comment)
	require.Empty(t, ret.Changes)
	require.NotContains(t, admin.databases, "testdb")
}

func TestDatabasePresentAlreadyThere(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	admin.databases["testdb"] = &dbadmin.DatabaseInfo{Name: "testdb", CharacterSet: "utf8mb4", Collate: "utf8mb4_general_ci"}
	ret := NewDatabase(admin).Present(context.Background(), "testdb", "utf8mb4", "utf8mb4_general_ci", false)
	require.NotNil(t, ret.Result)
	require.True(t, *ret.Result)
	require.Equal(t, "Database testdb is already present", ret.Comment)
	require.Empty(t, ret.Changes)
}

func TestDatabasePresentCharsetUpdate(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	admin.databases["testdb"] = &dbadmin.DatabaseInfo{Name: "testdb", CharacterSet: "latin1", Collate: "latin1_swedish_ci"}
	ret := NewDatabase(admin).Present(context.Background(), "testdb", "utf8mb4", "", false)
	require.NotNil(t, ret.Result)
	require.True(t, *ret.Result)
	require.Equal(t, "Database character set utf8mb4 != latin1 needs to be updated", ret.Comment)
	require.Equal(t, map[string]interface{}{"character_set": "utf8mb4"}, ret.Changes)
	require.Equal(t, "utf8mb4", admin.databases["testdb"].CharacterSet)
}

func TestDatabasePresentUpdateTestMode(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	admin.databases["testdb"] = &dbadmin.DatabaseInfo{Name: "testdb", CharacterSet: "latin1", Collate: "latin1_swedish_ci"}
	ret := NewDatabase(admin).Present(context.Background(), "testdb", "utf8mb4", "utf8mb4_general_ci", true)
	require.Nil(t, ret.Result)
	require.Contains(t, ret.Comment, "Database character set utf8mb4 != latin1 needs to be updated")
	require.Contains(t, ret.Comment, "Database collate utf8mb4_general_ci != latin1_swedish_ci needs to be updated")
	require.Contains(t, ret.Comment, "Database testdb is going to be updated")
	require.Empty(t, ret.Changes)
}

func TestDatabasePresentCreateFails(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	admin.createErr = errors.New("access denied")
	ret := NewDatabase(admin).Present(context.Background(), "testdb", "", "", false)
	require.NotNil(t, ret.Result)
	require.False(t, *ret.Result)
	require.Equal(t, "Failed to create database testdb (access denied)", ret.Comment)
	require.Empty(t, ret.Changes)
}

func TestDatabaseAbsentRemoves(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	admin.databases["testdb"] = &dbadmin.DatabaseInfo{Name: "testdb"}
	ret := NewDatabase(admin).Absent(context.Background(), "testdb", false)
	require.NotNil(t, ret.Result)
	require.True(t, *ret.Result)
	require.Equal(t, "Database testdb has been removed", ret.Comment)
	require.Equal(t, map[string]interface{}{"testdb": "Absent"}, ret.Changes)
	require.NotContains(t, admin.databases, "testdb")
}

func TestDatabaseAbsentAlreadyGone(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	ret := NewDatabase(admin).Absent(context.Background(), "testdb", false)
	require.NotNil(t, ret.Result)
	require.True(t, *ret.Result)
	require.Equal(t, "Database testdb is not present", ret.Comment)
	require.Empty(t, ret.Changes)
}

func TestDatabaseAbsentTestMode(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	admin.databases["testdb"] = &dbadmin.DatabaseInfo{Name: "testdb"}
	ret := NewDatabase(admin).Absent(context.Background(), "testdb", true)
	require.Nil(t, ret.Result)
	require.Equal(t, "Database testdb is present and needs to be removed", ret.Comment)
	require.Contains(t, admin.databases, "testdb")
}

func TestDatabaseAbsentRemoveFails(t *testing.T) {
	admin := newFakeDatabaseAdmin()
	admin.databases["testdb"] = &dbadmin.DatabaseInfo{Name: "testdb"}
	admin.removeErr = errors.New("access denied")
	ret := NewDatabase(admin).Absent(context.Background(), "testdb", false)
	require.NotNil(t, ret.Result)
	require.False(t, *ret.Result)
	require.Equal(t, "Unable to remove database testdb (access denied)", ret.Comment)
}
