package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minionops/minionbase/internal/auth"
	"github.com/minionops/minionbase/internal/pkg/errors"
	"github.com/minionops/minionbase/internal/pkg/jwt"
	"github.com/minionops/minionbase/internal/repo"
	"github.com/minionops/minionbase/internal/testutil"
)

func TestLoginFlow(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, _ = db.ExecContext(ctx, "DELETE FROM accounts WHERE username = ?", "master-auth")

	secret := []byte("test-secret")
	svc := auth.NewService(repo.NewAccountRepo(db), secret, time.Hour)

	require.NoError(t, svc.CreateAccount(ctx, "master-auth", "hunter2"))

	token, err := svc.Login(ctx, "master-auth", "hunter2")
	require.NoError(t, err)
	claims, err := jwt.ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "master-auth", claims.Username)

	_, err = svc.Login(ctx, "master-auth", "wrong")
	require.ErrorIs(t, err, errors.ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody", "hunter2")
	require.ErrorIs(t, err, errors.ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, _ = db.ExecContext(ctx, "DELETE FROM accounts WHERE username = ?", "master-rotate")

	svc := auth.NewService(repo.NewAccountRepo(db), []byte("test-secret"), time.Hour)
	require.NoError(t, svc.CreateAccount(ctx, "master-rotate", "old-pass"))
	require.NoError(t, svc.ChangePassword(ctx, "master-rotate", "new-pass"))

	_, err := svc.Login(ctx, "master-rotate", "old-pass")
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	_, err = svc.Login(ctx, "master-rotate", "new-pass")
	require.NoError(t, err)
}

func TestCreateAccountValidation(t *testing.T) {
	svc := auth.NewService(nil, []byte("s"), time.Hour)
	require.ErrorIs(t, svc.CreateAccount(context.Background(), "", "pw"), errors.ErrInvalid)
	require.ErrorIs(t, svc.CreateAccount(context.Background(), "user", ""), errors.ErrInvalid)
}
