package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleViewer))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleManager.AtLeast(RoleScanner))
	assert.False(t, RoleScanner.AtLeast(RoleManager))
	assert.False(t, RoleViewer.AtLeast(RoleScanner))

	// Unknown roles sit below every real role.
	assert.False(t, Role("intruder").AtLeast(RoleViewer))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("viewer"))
	assert.True(t, ValidRole("admin"))
	assert.False(t, ValidRole("root"))
	assert.False(t, ValidRole(""))
}
