package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	reg.Register("conn-1", "alice")

	userID, ok := reg.Lookup("conn-1")
	require.True(t, ok)
	assert.Equal(t, "alice", userID)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryLastWriteWins(t *testing.T) {
	reg := NewRegistry()

	reg.Register("conn-1", "alice")
	reg.Register("conn-1", "bob")

	assert.Equal(t, "bob", reg.Identity("conn-1"))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryIdentityFallsBackToConnectionID(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, "conn-9", reg.Identity("conn-9"))
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()

	reg.Register("conn-1", "alice")
	reg.Unregister("conn-1")

	_, ok := reg.Lookup("conn-1")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryUnregisterUnknownIsNoOp(t *testing.T) {
	reg := NewRegistry()

	// Disconnect before any join event must not fail.
	reg.Unregister("never-registered")

	assert.Equal(t, 0, reg.Len())
}

func TestRegistrySameUserOnMultipleConnections(t *testing.T) {
	reg := NewRegistry()

	reg.Register("tab-1", "alice")
	reg.Register("tab-2", "alice")

	assert.Equal(t, "alice", reg.Identity("tab-1"))
	assert.Equal(t, "alice", reg.Identity("tab-2"))
	assert.Equal(t, 2, reg.Len())
}
