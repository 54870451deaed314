// Copyright (c) 2026 Laurea. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/laurea-app/laurea/internal/platform/sec"
)

/*
TestParseRole verifies that only the three known role strings resolve to
their roles, and everything else falls to contestant (least privilege).
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  sec.Role
	}{
		{"admin", "admin", sec.RoleAdmin},
		{"judge", "judge", sec.RoleJudge},
		{"contestant", "contestant", sec.RoleContestant},
		{"unknown_string", "superuser", sec.RoleContestant},
		{"empty_string", "", sec.RoleContestant},
		{"case_sensitive", "Admin", sec.RoleContestant},
		{"nil_value", nil, sec.RoleContestant},
		{"non_string", 42, sec.RoleContestant},
		{"bool_value", true, sec.RoleContestant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sec.ParseRole(tt.value))
		})
	}
}

/*
TestRole_AtLeast verifies the hierarchy ordering admin > judge > contestant.
*/
func TestRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleJudge))
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleContestant))
	assert.True(t, sec.RoleJudge.AtLeast(sec.RoleContestant))
	assert.True(t, sec.RoleJudge.AtLeast(sec.RoleJudge))

	assert.False(t, sec.RoleContestant.AtLeast(sec.RoleJudge))
	assert.False(t, sec.RoleJudge.AtLeast(sec.RoleAdmin))

	// Unknown roles rank below everything.
	assert.False(t, sec.Role("ghost").AtLeast(sec.RoleContestant))
}

/*
TestCanonicalEmail verifies trimming and case folding.
*/
func TestCanonicalEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already_canonical", "judge@laurea.app", "judge@laurea.app"},
		{"upper_case", "Judge@Laurea.App", "judge@laurea.app"},
		{"surrounding_space", "  judge@laurea.app  ", "judge@laurea.app"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sec.CanonicalEmail(tt.input))
		})
	}
}
