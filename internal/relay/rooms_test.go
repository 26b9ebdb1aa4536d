package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newRoomTestClient() *Client {
	return &Client{id: "test", send: make(chan []byte, 8)}
}

func TestRoomTableJoinCreatesChannel(t *testing.T) {
	rooms := NewRoomTable()
	c := newRoomTestClient()

	size := rooms.Join("room1", c)

	assert.Equal(t, 1, size)
	assert.Equal(t, 1, rooms.MemberCount("room1"))
	assert.True(t, rooms.Contains("room1", c))
}

func TestRoomTableJoinIsIdempotent(t *testing.T) {
	rooms := NewRoomTable()
	c := newRoomTestClient()

	rooms.Join("room1", c)
	size := rooms.Join("room1", c)

	assert.Equal(t, 1, size)
	assert.Equal(t, 1, rooms.MemberCount("room1"))
}

func TestRoomTableLeaveDropsEmptyChannel(t *testing.T) {
	rooms := NewRoomTable()
	c := newRoomTestClient()

	rooms.Join("room1", c)
	rooms.Leave("room1", c)

	assert.Equal(t, 0, rooms.MemberCount("room1"))
	assert.False(t, rooms.Contains("room1", c))
}

func TestRoomTableLeaveWhenNotMemberIsNoOp(t *testing.T) {
	rooms := NewRoomTable()
	a := newRoomTestClient()
	b := newRoomTestClient()

	rooms.Join("room1", a)
	rooms.Leave("room1", b)
	rooms.Leave("never-created", b)

	assert.Equal(t, 1, rooms.MemberCount("room1"))
}

func TestRoomTableMemberCountOfUnknownChannelIsZero(t *testing.T) {
	rooms := NewRoomTable()

	assert.Equal(t, 0, rooms.MemberCount("ghost"))
	assert.Empty(t, rooms.Members("ghost"))
}

func TestRoomTableDropAllRemovesFromEveryChannel(t *testing.T) {
	rooms := NewRoomTable()
	a := newRoomTestClient()
	b := newRoomTestClient()

	rooms.Join("room1", a)
	rooms.Join("room2", a)
	rooms.Join("room1", b)

	rooms.DropAll(a)

	assert.Equal(t, 1, rooms.MemberCount("room1"))
	assert.Equal(t, 0, rooms.MemberCount("room2"))
	assert.True(t, rooms.Contains("room1", b))
}

func TestRoomTableMembersIsASnapshot(t *testing.T) {
	rooms := NewRoomTable()
	a := newRoomTestClient()
	b := newRoomTestClient()

	rooms.Join("room1", a)
	rooms.Join("room1", b)

	members := rooms.Members("room1")
	rooms.Leave("room1", a)

	assert.Len(t, members, 2)
	assert.Equal(t, 1, rooms.MemberCount("room1"))
}
