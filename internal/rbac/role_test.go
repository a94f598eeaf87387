package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var allRoles = []Role{RoleObserver, RoleUser, RoleCheckin, RoleSeller, RoleAdmin}

func TestSatisfiesReflexive(t *testing.T) {
	for _, role := range allRoles {
		require.True(t, role.Satisfies(role), "role %s must satisfy itself", role)
	}
}

func TestSatisfiesTotalOrder(t *testing.T) {
	// observer < user < checkin < seller < admin
	for i, lower := range allRoles {
		for j, higher := range allRoles {
			got := higher.Satisfies(lower)
			want := j >= i
			require.Equal(t, want, got, "%s.Satisfies(%s)", higher, lower)
		}
	}
}

func TestAdminSatisfiesEverything(t *testing.T) {
	for _, required := range allRoles {
		require.True(t, RoleAdmin.Satisfies(required))
	}
}

func TestObserverSatisfiesOnlyObserver(t *testing.T) {
	require.True(t, RoleObserver.Satisfies(RoleObserver))
	for _, required := range []Role{RoleUser, RoleCheckin, RoleSeller, RoleAdmin} {
		require.False(t, RoleObserver.Satisfies(required))
	}
}

func TestSatisfiesUnknownRole(t *testing.T) {
	require.False(t, Role("root").Satisfies(RoleUser))
	require.False(t, RoleAdmin.Satisfies(Role("root")))
}

func TestAnySatisfies(t *testing.T) {
	tests := []struct {
		name     string
		held     []Role
		required []Role
		want     bool
	}{
		{"single match", []Role{RoleSeller}, []Role{RoleSeller}, true},
		{"higher rank matches", []Role{RoleAdmin}, []Role{RoleCheckin}, true},
		{"lower rank denied", []Role{RoleObserver}, []Role{RoleAdmin}, false},
		{"or across held set", []Role{RoleObserver, RoleSeller}, []Role{RoleCheckin}, true},
		{"or across required set", []Role{RoleCheckin}, []Role{RoleAdmin, RoleUser}, true},
		{"empty required", []Role{RoleAdmin}, nil, false},
		{"empty held", nil, []Role{RoleObserver}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AnySatisfies(tt.held, tt.required))
		})
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("checkin")
	require.NoError(t, err)
	require.Equal(t, RoleCheckin, role)

	_, err = ParseRole("superuser")
	require.Error(t, err)
}
