package account

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/buyme/internal/models"
)

func TestDestination(t *testing.T) {
	cases := []struct {
		role Role
		want string
		ok   bool
	}{
		{RoleAdmin, "/admin/dashboard", true},
		{RoleStaff, "/staff/dashboard", true},
		{RoleCustomer, "/", true},
		{Role("manager"), "", false},
		{Role(""), "", false},
	}
	for _, tc := range cases {
		got, ok := Destination(tc.role)
		require.Equal(t, tc.ok, ok, tc.role)
		require.Equal(t, tc.want, got, tc.role)
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Staff ")
	require.True(t, ok)
	require.Equal(t, RoleStaff, r)

	_, ok = ParseRole("root")
	require.False(t, ok)
}

func TestDecodeUser_KeepsUnknownRole(t *testing.T) {
	u := DecodeUser(models.UserDoc{ID: "u1", Email: "a@b.c", Role: "owner"})
	require.Equal(t, Role("owner"), u.Role)
	require.False(t, u.Role.Valid())
	require.Equal(t, "owner", EncodeUser(u).Role)
}
