// Copyright (c) 2026 HKSD Tech. All rights reserved.

package sec

// # Agent Roles

// Role represents one tier of the agent hierarchy.
type Role string

const (
	// Pre-provisioned root of the tree
	RoleAdmin Role = "admin"

	// Created by admin accounts
	RoleConsultant Role = "consultant"

	// Four agent tiers, each created only by the tier directly above
	RoleAgent1 Role = "agent1"
	RoleAgent2 Role = "agent2"
	RoleAgent3 Role = "agent3"
	RoleAgent4 Role = "agent4"
)

// unknownLevel is the sentinel for malformed role strings. It can never
// satisfy the adjacency check, so bad values are rejected rather than
// mis-ranked.
const unknownLevel = 99

// # Role Hierarchy

// Level maps a role to its numeric rank. Smaller = more privileged.
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return 0
	case RoleConsultant:
		return 1
	case RoleAgent1:
		return 2
	case RoleAgent2:
		return 3
	case RoleAgent3:
		return 4
	case RoleAgent4:
		return 5
	default:
		return unknownLevel
	}
}

// Known reports whether the role is one of the closed set.
func (r Role) Known() bool {
	return r.Level() != unknownLevel
}

// CanCreateChild reports whether an account holding parent may create a child
// account holding child. Only strictly adjacent downward creation is allowed:
// no peers, no grandchildren, no ancestors. An unknown role on either side
// always fails.
func CanCreateChild(parent, child Role) bool {
	parentLevel := parent.Level()
	if parentLevel == unknownLevel {
		return false
	}
	return child.Level() == parentLevel+1
}

// ChildRoles is the set of roles a created account may hold. RoleAdmin is
// absent on purpose: the root account is provisioned at startup, never
// through registration.
func ChildRoles() []Role {
	return []Role{RoleConsultant, RoleAgent1, RoleAgent2, RoleAgent3, RoleAgent4}
}
