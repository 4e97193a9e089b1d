package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameMatches(t *testing.T) {
	u := User{Name: "Alice", Email: "alice@example.com", Role: RoleBuyer, Active: true}

	assert.True(t, u.NameMatches("alice"))
	assert.True(t, u.NameMatches("  ALICE "))
	assert.False(t, u.NameMatches("alicia"))
	assert.False(t, u.NameMatches(""))
}

func TestRoleSets(t *testing.T) {
	assert.True(t, WriteRoles.Has(RoleCashier))
	assert.True(t, WriteRoles.Has(RoleAdmin))
	assert.False(t, WriteRoles.Has(RoleViewer))
	assert.False(t, WriteRoles.Has(RoleBuyer))

	for _, r := range []Role{RoleCashier, RoleAdmin, RoleViewer, RoleBuyer} {
		assert.True(t, ReadRoles.Has(r))
	}

	assert.True(t, StaffReadRoles.Has(RoleViewer))
	assert.False(t, StaffReadRoles.Has(RoleBuyer))
}
