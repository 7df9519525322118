package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanGatekeep(t *testing.T) {
	assert.True(t, CanGatekeep(RoleGatekeeper))
	assert.True(t, CanGatekeep(RolePortfolio))
	assert.True(t, CanGatekeep(RoleAdmin))
	assert.False(t, CanGatekeep(RoleResearcher))
	assert.False(t, CanGatekeep(RoleLead))
	assert.False(t, CanGatekeep(RoleAuditor))
}

func TestIsElevated(t *testing.T) {
	assert.True(t, IsElevated(RolePortfolio))
	assert.True(t, IsElevated(RoleAdmin))
	assert.False(t, IsElevated(RoleGatekeeper))
	assert.False(t, IsElevated(RoleAuditor))
}

func TestIsReadOnly(t *testing.T) {
	assert.True(t, IsReadOnly(RoleAuditor))
	assert.False(t, IsReadOnly(RoleAdmin))
}
