// Package relay models conversation channels as named member sets so fan-out
// can iterate explicitly over the clients joined to a channel.
package relay

import "sync"

// RoomTable maps channel ids to their current member sets. Channels are
// created implicitly on first join and cease to exist when the last member
// leaves; a zero member count is indistinguishable from a channel that was
// never joined.
type RoomTable struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewRoomTable creates an empty room table.
func NewRoomTable() *RoomTable {
	return &RoomTable{
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// Join adds the client to the channel's member set and returns the member
// count after the join. Joining a channel already joined is a no-op, so the
// count goes up by at most one per distinct client.
func (t *RoomTable) Join(channelID string, c *Client) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.rooms[channelID]
	if !ok {
		members = make(map[*Client]struct{})
		t.rooms[channelID] = members
	}
	members[c] = struct{}{}
	return len(members)
}

// Leave removes the client from the channel's member set. It is a no-op when
// the client is not a member. An emptied channel is dropped from the table.
func (t *RoomTable) Leave(channelID string, c *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaveLocked(channelID, c)
}

func (t *RoomTable) leaveLocked(channelID string, c *Client) {
	members, ok := t.rooms[channelID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(t.rooms, channelID)
	}
}

// Contains reports whether the client is currently a member of the channel.
func (t *RoomTable) Contains(channelID string, c *Client) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rooms[channelID][c]
	return ok
}

// MemberCount returns the channel's current member count, 0 for a channel
// nobody has joined.
func (t *RoomTable) MemberCount(channelID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms[channelID])
}

// Members returns a snapshot of the channel's member set so fan-out can
// iterate without holding the table lock.
func (t *RoomTable) Members(channelID string) []*Client {
	t.mu.RLock()
	defer t.mu.RUnlock()

	members := make([]*Client, 0, len(t.rooms[channelID]))
	for c := range t.rooms[channelID] {
		members = append(members, c)
	}
	return members
}

// DropAll removes the client from every channel it is a member of. Called on
// disconnect so no explicit leave events are required first.
func (t *RoomTable) DropAll(c *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for channelID := range t.rooms {
		t.leaveLocked(channelID, c)
	}
}
