// Package auth verifies master accounts against the accounts table and
// issues the tokens the rest of the API requires.
package auth

import (
	"context"
	"time"

	"github.com/minionops/minionbase/internal/model"
	appErr "github.com/minionops/minionbase/internal/pkg/errors"
	"github.com/minionops/minionbase/internal/pkg/jwt"
	"github.com/minionops/minionbase/internal/pkg/password"
	"github.com/minionops/minionbase/internal/pkg/timeutil"
	"github.com/minionops/minionbase/internal/repo"
)

type Service struct {
	accounts *repo.AccountRepo
	secret   []byte
	ttl      time.Duration
}

func NewService(accounts *repo.AccountRepo, secret []byte, ttl time.Duration) *Service {
	return &Service{accounts: accounts, secret: secret, ttl: ttl}
}

func (s *Service) Login(ctx context.Context, username, plainPassword string) (string, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return "", appErr.ErrUnauthorized
	}
	if err := password.Compare(account.PasswordHash, plainPassword); err != nil {
		return "", appErr.ErrUnauthorized
	}
	return jwt.GenerateToken(account.Username, s.secret, s.ttl)
}

func (s *Service) CreateAccount(ctx context.Context, username, plainPassword string) error {
	if username == "" || plainPassword == "" {
		return appErr.ErrInvalid
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}
	now := timeutil.NowUnix()
	return s.accounts.Create(ctx, &model.Account{
		Username:     username,
		PasswordHash: hash,
		Ctime:        now,
		Mtime:        now,
	})
}

func (s *Service) ChangePassword(ctx context.Context, username, plainPassword string) error {
	if username == "" || plainPassword == "" {
		return appErr.ErrInvalid
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, username, hash, timeutil.NowUnix())
}
