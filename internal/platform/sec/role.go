// Copyright (c) 2026 Laurea. All rights reserved.

package sec

// # Roles

// Role classifies a principal at authentication time. It is one of exactly
// three values and gates access to the matching route namespace.
type Role string

const (
	// Platform operators: contest configuration, judge provisioning, reporting
	RoleAdmin Role = "admin"

	// Scoring panel members provisioned by an admin
	RoleJudge Role = "judge"

	// Default role for self-registered participants
	RoleContestant Role = "contestant"
)

// ParseRole maps a raw role value (typically the `user_metadata.role` field
// returned by the managed auth provider) to a [Role].
//
// # Least Privilege
//
// Absent, malformed, or unknown values always resolve to [RoleContestant] —
// never to admin or judge. An attacker who can influence metadata must not be
// able to escalate by supplying garbage.
func ParseRole(value any) Role {
	raw, ok := value.(string)
	if !ok {
		return RoleContestant
	}

	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin
	case RoleJudge:
		return RoleJudge
	default:
		return RoleContestant
	}
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
//
// NOTE: The route guard deliberately does NOT use this — namespace access is
// exact-match (an admin cannot browse judge pages). The hierarchy exists for
// future privilege comparisons only.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleJudge:
		return 2
	case RoleContestant:
		return 1
	default:
		return 0
	}
}
