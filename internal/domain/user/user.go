package user

import (
	"context"
	"strings"
)

type Role string

const (
	RoleCashier Role = "cashier"
	RoleAdmin   Role = "admin"
	RoleViewer  Role = "viewer"
	RoleBuyer   Role = "buyer"
)

// User is one record of the authorization store. Records are created by an
// external registration process and never deleted; Active is the only field
// that changes afterwards.
type User struct {
	Name   string
	Email  string
	Role   Role
	Active bool
}

// NameMatches reports whether the user's display name equals the given
// customer name, case-insensitively and trim-insensitively. Buyers use this
// for self-service balance lookups.
func (u User) NameMatches(customer string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Name), strings.TrimSpace(customer))
}

// RoleSet is a set of roles permitted to perform an action class.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// The two action classes used by callers.
var (
	WriteRoles = NewRoleSet(RoleCashier, RoleAdmin)
	ReadRoles  = NewRoleSet(RoleCashier, RoleAdmin, RoleViewer, RoleBuyer)

	// StaffReadRoles excludes buyers, who may only query their own balance.
	StaffReadRoles = NewRoleSet(RoleCashier, RoleAdmin, RoleViewer)
)

// Store is the external tabular store holding user records.
type Store interface {
	ScanAll(ctx context.Context) ([]User, error)
}
