package state

import (
	"context"
	"fmt"
)

type UserAdmin interface {
	UserExists(ctx context.Context, user, host string) (bool, error)
	CreateUser(ctx context.Context, user, host, plainPassword string) error
	RemoveUser(ctx context.Context, user, host string) error
}

type User struct {
	admin UserAdmin
}

func NewUser(admin UserAdmin) *User {
	return &User{admin: admin}
}

func accountName(user, host string) string {
	if host == "" {
		host = "localhost"
	}
	return user + "@" + host
}

func (s *User) Present(ctx context.Context, user, host, plainPassword string, test bool) Result {
	name := accountName(user, host)
	ret := newResult(name)
	exists, err := s.admin.UserExists(ctx, user, host)
	if err != nil {
		ret.fail(fmt.Sprintf("Failed to inspect user %s (%v)", name, err))
		return ret
	}
	if exists {
		ret.succeed(fmt.Sprintf("User %s is already present", name))
		return ret
	}
	if test {
		ret.pend(fmt.Sprintf("User %s is not present and needs to be created", name))
		return ret
	}
	if err := s.admin.CreateUser(ctx, user, host, plainPassword); err != nil {
		ret.fail(fmt.Sprintf("Failed to create user %s (%v)", name, err))
		return ret
	}
	ret.Changes[name] = "Present"
	ret.succeed(fmt.Sprintf("The user %s has been created", name))
	return ret
}

func (s *User) Absent(ctx context.Context, user, host string, test bool) Result {
	name := accountName(user, host)
	ret := newResult(name)
	exists, err := s.admin.UserExists(ctx, user, host)
	if err != nil {
		ret.fail(fmt.Sprintf("Failed to inspect user %s (%v)", name, err))
		return ret
	}
	if !exists {
		ret.succeed(fmt.Sprintf("User %s is not present", name))
		return ret
	}
	if test {
		ret.pend(fmt.Sprintf("User %s is present and needs to be removed", name))
		return ret
	}
	if err := s.admin.RemoveUser(ctx, user, host); err != nil {
		ret.fail(fmt.Sprintf("Unable to remove user %s (%v)", name, err))
		return ret
	}
	ret.Changes[name] = "Absent"
	ret.succeed(fmt.Sprintf("User %s has been removed", name))
	return ret
}
