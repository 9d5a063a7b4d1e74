package state

import (
	"context"
	"fmt"
)

type GrantAdmin interface {
	GrantExists(ctx context.Context, grant, database, user, host string) (bool, error)
	GrantAdd(ctx context.Context, grant, database, user, host string) error
	GrantRevoke(ctx context.Context, grant, database, user, host string) error
}

type Grants struct {
	admin GrantAdmin
}

func NewGrants(admin GrantAdmin) *Grants {
	return &Grants{admin: admin}
}

func grantName(grant, database, user, host string) string {
	return fmt.Sprintf("%s on %s to %s", grant, database, accountName(user, host))
}

func (s *Grants) Present(ctx context.Context, grant, database, user, host string, test bool) Result {
	name := grantName(grant, database, user, host)
	ret := newResult(name)
	exists, err := s.admin.GrantExists(ctx, grant, database, user, host)
	if err != nil {
		ret.fail(fmt.Sprintf("Failed to inspect grant %s (%v)", name, err))
		return ret
	}
	if exists {
		ret.succeed(fmt.Sprintf("Grant %s is already present", name))
		return ret
	}
	if test {
		ret.pend(fmt.Sprintf("Grant %s is set to be created", name))
		return ret
	}
	if err := s.admin.GrantAdd(ctx, grant, database, user, host); err != nil {
		ret.fail(fmt.Sprintf("Failed to add grant %s (%v)", name, err))
		return ret
	}
	ret.Changes[name] = "Present"
	ret.succeed(fmt.Sprintf("Grant %s has been added", name))
	return ret
}

func (s *Grants) Absent(ctx context.Context, grant, database, user, host string, test bool) Result {
	name := grantName(grant, database, user, host)
	ret := newResult(name)
	exists, err := s.admin.GrantExists(ctx, grant, database, user, host)
	if err != nil {
		ret.fail(fmt.Sprintf("Failed to inspect grant %s (%v)", name, err))
		return ret
	}
	if !exists {
		ret.succeed(fmt.Sprintf("Grant %s is not present", name))
		return ret
	}
	if test {
		ret.pend(fmt.Sprintf("Grant %s is present and needs to be revoked", name))
		return ret
	}
	if err := s.admin.GrantRevoke(ctx, grant, database, user, host); err != nil {
		ret.fail(fmt.Sprintf("Unable to revoke grant %s (%v)", name, err))
		return ret
	}
	ret.Changes[name] = "Absent"
	ret.succeed(fmt.Sprintf("Grant %s has been revoked", name))
	return ret
}
