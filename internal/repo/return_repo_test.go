package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minionops/minionbase/internal/model"
	appErr "github.com/minionops/minionbase/internal/pkg/errors"
	"github.com/minionops/minionbase/internal/repo"
	"github.com/minionops/minionbase/internal/testutil"
)

func clearReturnTables(t *testing.T, returns *repo.ReturnRepo) {
	t.Helper()
	ctx := context.Background()
	cutoff := time.Now().Add(time.Hour).Unix()
	_, err := returns.DeleteReturnsBefore(ctx, cutoff)
	require.NoError(t, err)
	_, err = returns.DeleteLoadsBefore(ctx, cutoff)
	require.NoError(t, err)
}

func TestReturnRepoInsertAndGetByJID(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	returns := repo.NewReturnRepo(db, "mysql")
	clearReturnTables(t, returns)

	require.NoError(t, returns.InsertReturn(ctx, &model.JobReturn{
		JID:      "20260823120000000000",
		MinionID: "web1",
		Fun:      "test.ping",
		Success:  true,
		Ret:      []byte("true"),
		FullRet:  []byte(`{"return": true}`),
	}))

	got, err := returns.GetByJID(ctx, "20260823120000000000")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "web1", got[0].MinionID)
	require.Equal(t, "test.ping", got[0].Fun)
	require.True(t, got[0].Success)
	require.Greater(t, got[0].AlterTime, int64(0))
}

func TestReturnRepoSaveLoadIdempotent(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	returns := repo.NewReturnRepo(db, "mysql")
	clearReturnTables(t, returns)

	require.NoError(t, returns.SaveLoad(ctx, "20260823120000000001", []byte("first")))
	// The duplicate keeps the first payload.
	require.NoError(t, returns.SaveLoad(ctx, "20260823120000000001", []byte("second")))

	payload, err := returns.GetLoad(ctx, "20260823120000000001")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), payload)

	_, err = returns.GetLoad(ctx, "missing-jid")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestReturnRepoGetByFunLatestPerMinion(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	returns := repo.NewReturnRepo(db, "mysql")
	clearReturnTables(t, returns)

	require.NoError(t, returns.InsertReturn(ctx, &model.JobReturn{
		JID: "jid-1", MinionID: "web1", Fun: "state.apply", Success: true, Ret: []byte("old"),
	}))
	// Timestamps have second resolution.
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, returns.InsertReturn(ctx, &model.JobReturn{
		JID: "jid-2", MinionID: "web1", Fun: "state.apply", Success: true, Ret: []byte("new"),
	}))

	got, err := returns.GetByFun(ctx, "state.apply")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "jid-2", got[0].JID)
	require.Equal(t, []byte("new"), got[0].Ret)
}

func TestReturnRepoListMinionsAndJIDs(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	returns := repo.NewReturnRepo(db, "mysql")
	clearReturnTables(t, returns)

	require.NoError(t, returns.InsertReturn(ctx, &model.JobReturn{
		JID: "jid-1", MinionID: "web1", Fun: "test.ping", Success: true,
	}))
	require.NoError(t, returns.InsertReturn(ctx, &model.JobReturn{
		JID: "jid-1", MinionID: "web2", Fun: "test.ping", Success: true,
	}))
	require.NoError(t, returns.SaveLoad(ctx, "jid-1", []byte("load")))

	minions, err := returns.ListMinions(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"web1", "web2"}, minions)

	loads, err := returns.ListJIDs(ctx)
	require.NoError(t, err)
	require.Len(t, loads, 1)
	require.Equal(t, "jid-1", loads[0].JID)
}

func TestReturnRepoPruneWindow(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	returns := repo.NewReturnRepo(db, "mysql")
	clearReturnTables(t, returns)

	require.NoError(t, returns.InsertReturn(ctx, &model.JobReturn{
		JID: "jid-old", MinionID: "web1", Fun: "test.ping", Success: true,
	}))

	// A cutoff in the past keeps the fresh row.
	old, err := returns.SelectReturnsBefore(ctx, time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)
	require.Empty(t, old)

	deleted, err := returns.DeleteReturnsBefore(ctx, time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)
	require.Zero(t, deleted)

	// A cutoff in the future sweeps it.
	deleted, err = returns.DeleteReturnsBefore(ctx, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}
