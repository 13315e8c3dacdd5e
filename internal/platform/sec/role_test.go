// Copyright (c) 2026 HKSD Tech. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hksd-tech/hksd-api/internal/platform/sec"
)

/*
TestRole_Level verifies the numeric rank of every role in the hierarchy.
*/
func TestRole_Level(t *testing.T) {
	tests := []struct {
		role  sec.Role
		level int
	}{
		{sec.RoleAdmin, 0},
		{sec.RoleConsultant, 1},
		{sec.RoleAgent1, 2},
		{sec.RoleAgent2, 3},
		{sec.RoleAgent3, 4},
		{sec.RoleAgent4, 5},
		{sec.Role("superadmin"), 99},
		{sec.Role(""), 99},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.level, tt.role.Level())
		})
	}
}

/*
TestRole_Known verifies membership of the closed role set.
*/
func TestRole_Known(t *testing.T) {
	for _, role := range []sec.Role{
		sec.RoleAdmin, sec.RoleConsultant,
		sec.RoleAgent1, sec.RoleAgent2, sec.RoleAgent3, sec.RoleAgent4,
	} {
		assert.True(t, role.Known(), string(role))
	}

	assert.False(t, sec.Role("AGENT1").Known())
	assert.False(t, sec.Role("agent5").Known())
	assert.False(t, sec.Role("").Known())
}

/*
TestCanCreateChild enforces strictly adjacent downward creation.
*/
func TestCanCreateChild(t *testing.T) {
	tests := []struct {
		name    string
		parent  sec.Role
		child   sec.Role
		allowed bool
	}{
		// Adjacent downward pairs are the only legal ones.
		{"admin_creates_consultant", sec.RoleAdmin, sec.RoleConsultant, true},
		{"consultant_creates_agent1", sec.RoleConsultant, sec.RoleAgent1, true},
		{"agent1_creates_agent2", sec.RoleAgent1, sec.RoleAgent2, true},
		{"agent2_creates_agent3", sec.RoleAgent2, sec.RoleAgent3, true},
		{"agent3_creates_agent4", sec.RoleAgent3, sec.RoleAgent4, true},

		// Skipping a level is forbidden.
		{"admin_skips_to_agent1", sec.RoleAdmin, sec.RoleAgent1, false},
		{"consultant_skips_to_agent2", sec.RoleConsultant, sec.RoleAgent2, false},

		// Peers and ancestors are forbidden.
		{"admin_creates_admin", sec.RoleAdmin, sec.RoleAdmin, false},
		{"agent1_creates_agent1", sec.RoleAgent1, sec.RoleAgent1, false},
		{"agent2_creates_agent1", sec.RoleAgent2, sec.RoleAgent1, false},
		{"consultant_creates_admin", sec.RoleConsultant, sec.RoleAdmin, false},

		// The bottom tier creates nothing.
		{"agent4_creates_anything", sec.RoleAgent4, sec.RoleAgent4, false},

		// Unknown roles never participate.
		{"unknown_parent", sec.Role("boss"), sec.RoleConsultant, false},
		{"unknown_child", sec.RoleAdmin, sec.Role("minion"), false},
		{"both_unknown", sec.Role("x"), sec.Role("y"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, sec.CanCreateChild(tt.parent, tt.child))
		})
	}
}

/*
TestChildRoles verifies the creatable set excludes the root role.
*/
func TestChildRoles(t *testing.T) {
	roles := sec.ChildRoles()

	assert.Len(t, roles, 5)
	assert.NotContains(t, roles, sec.RoleAdmin)
	assert.Contains(t, roles, sec.RoleConsultant)
	assert.Contains(t, roles, sec.RoleAgent4)
}
