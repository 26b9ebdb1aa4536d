// Package relay coordinates connection registration, channel membership, and
// message fan-out for the conversation relay via the Relay type.
package relay

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Logger is the logging hook injected into the relay so the core control flow
// stays free of direct I/O. The zero value of a Relay built with a nil Logger
// falls back to the standard library logger.
type Logger func(format string, args ...any)

// Relay owns all volatile relay state: the set of live clients, the
// connection registry, and the room table. State transitions happen in the
// Run loop, fed by the attach/detach/inbound channels; the maps are mutex
// guarded because member counts and fan-out snapshots are read from handler
// and pump goroutines.
type Relay struct {
	registry *Registry
	rooms    *RoomTable

	inbound chan inboundFrame
	attach  chan *Client
	detach  chan *Client

	clients map[*Client]struct{}
	mu      sync.RWMutex

	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
	logf      Logger
}

// inboundFrame pairs a decoded event with the connection it arrived on so the
// run loop can attribute it.
type inboundFrame struct {
	client *Client
	event  InboundEvent
}

// NewRelay creates a relay ready to accept connections. Pass a nil logger to
// log through the standard library.
func NewRelay(logf Logger) *Relay {
	if logf == nil {
		logf = log.Printf
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Relay{
		registry:  NewRegistry(),
		rooms:     NewRoomTable(),
		inbound:   make(chan inboundFrame),
		attach:    make(chan *Client),
		detach:    make(chan *Client),
		clients:   make(map[*Client]struct{}),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: time.Now(),
		logf:      logf,
	}
}

// Registry exposes the connection registry, mainly for tests and diagnostics.
func (r *Relay) Registry() *Registry {
	return r.registry
}

// ConnectionCount reports the number of live client connections.
func (r *Relay) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// MemberCount reports the current member count of a channel.
func (r *Relay) MemberCount(channelID string) int {
	return r.rooms.MemberCount(channelID)
}

// StartedAt returns when the relay was constructed, for uptime reporting.
func (r *Relay) StartedAt() time.Time {
	return r.startedAt
}

// Attach hands a new client to the run loop, which registers it and starts
// its pump goroutines. Blocks until the run loop accepts it or the relay is
// shut down.
func (r *Relay) Attach(c *Client) {
	select {
	case r.attach <- c:
	case <-r.ctx.Done():
	}
}

// Detach queues a client for removal. Safe to call after shutdown began.
func (r *Relay) Detach(c *Client) {
	select {
	case r.detach <- c:
	case <-r.ctx.Done():
	}
}

// submit forwards a decoded frame to the run loop. Frames from one connection
// arrive in read order, and the run loop is serial, so a single sender's
// messages reach a channel in the order they were sent.
func (r *Relay) submit(c *Client, ev InboundEvent) {
	select {
	case r.inbound <- inboundFrame{client: c, event: ev}:
	case <-r.ctx.Done():
	}
}

// Run is the relay's main event loop, handling client attachment, detachment,
// and inbound events. Call it in its own goroutine; it runs until Shutdown.
func (r *Relay) Run() {
	defer close(r.done)

	for {
		select {
		case <-r.ctx.Done():
			r.closeAllClients()
			return

		case c := <-r.attach:
			if c == nil {
				r.logf("relay: ignoring nil client attach")
				continue
			}
			r.handleAttach(c)

		case c := <-r.detach:
			r.handleDetach(c)

		case frame := <-r.inbound:
			r.handleEvent(frame.client, frame.event)
		}
	}
}

func (r *Relay) handleAttach(c *Client) {
	r.mu.Lock()
	c.closed = false
	r.clients[c] = struct{}{}
	total := len(r.clients)
	r.mu.Unlock()
	r.logf("relay: connection %s attached from %s, %d total", c.id, c.addr, total)

	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		c.writePump()
	}()
	go func() {
		defer r.wg.Done()
		c.readPump()
	}()
}

// handleDetach tears down everything the relay knows about a connection: its
// identity mapping, every room membership, and its send channel. After this
// the connection receives no further broadcasts.
func (r *Relay) handleDetach(c *Client) {
	r.mu.Lock()
	if _, ok := r.clients[c]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.clients, c)
	c.closed = true
	total := len(r.clients)
	r.mu.Unlock()

	r.registry.Unregister(c.id)
	r.rooms.DropAll(c)
	close(c.send)
	r.logf("relay: connection %s detached, %d total", c.id, total)
}

// handleEvent dispatches one inbound event. Validation failures are answered
// with an ErrorEvent on the offending connection only; they never propagate
// to other connections or channels.
func (r *Relay) handleEvent(c *Client, ev InboundEvent) {
	var err error
	switch ev.Event {
	case EventIdentify:
		err = r.identify(c, ev)
	case EventJoinConversation:
		err = r.joinConversation(c, ev)
	case EventLeaveConversation:
		err = r.leaveConversation(c, ev)
	case EventSendMessage:
		err = r.relayMessage(c, ev)
	case EventMarkAsRead:
		err = r.markAsRead(c, ev)
	default:
		err = ErrUnknownEvent
	}

	if err != nil {
		r.logf("relay: rejected %q from %s: %v", ev.Event, c.id, err)
		r.replyError(c, err)
	}
}

// identify records the user identity announced by the client. Last write
// wins; a reconnecting tab simply overwrites its own mapping.
func (r *Relay) identify(c *Client, ev InboundEvent) error {
	if ev.UserID == "" {
		return ErrMissingUserID
	}
	r.registry.Register(c.id, ev.UserID)
	r.logf("relay: connection %s identified as %q", c.id, ev.UserID)
	return nil
}

// joinConversation adds the client to the channel and confirms the resulting
// member count to the joining connection only.
func (r *Relay) joinConversation(c *Client, ev InboundEvent) error {
	if ev.ChannelID == "" {
		return ErrMissingChannelID
	}
	size := r.rooms.Join(ev.ChannelID, c)
	r.sendEvent(c, RoomJoined{
		Event:     EventRoomJoined,
		ChannelID: ev.ChannelID,
		RoomSize:  size,
	})
	return nil
}

func (r *Relay) leaveConversation(c *Client, ev InboundEvent) error {
	if ev.ChannelID == "" {
		return ErrMissingChannelID
	}
	r.rooms.Leave(ev.ChannelID, c)
	return nil
}

// relayMessage builds the outbound envelope and fans it out to every current
// member of the target channel. The sender is never excluded: the echo is the
// client's delivery confirmation. A sender that has not joined the channel is
// joined first, which absorbs join/send races across two round trips.
func (r *Relay) relayMessage(c *Client, ev InboundEvent) error {
	if ev.ChannelID == "" {
		return ErrMissingChannelID
	}

	if !r.rooms.Contains(ev.ChannelID, c) {
		r.rooms.Join(ev.ChannelID, c)
	}

	messageType := ev.MessageType
	if messageType == "" {
		messageType = DefaultMessageType
	}
	sentAt := ev.SentAt
	if sentAt == "" {
		sentAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	envelope := Envelope{
		Event:          EventMessageReceived,
		ChannelID:      ev.ChannelID,
		SenderID:       r.registry.Identity(c.id),
		Content:        ev.Content,
		MessageType:    messageType,
		SentAt:         sentAt,
		AttachmentURL:  ev.AttachmentURL,
		AttachmentName: ev.AttachmentName,
		AttachmentType: ev.AttachmentType,
		AttachmentSize: ev.AttachmentSize,
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	r.broadcast(ev.ChannelID, payload)
	return nil
}

// markAsRead is accepted and logged only. Read-receipt state belongs to an
// external collaborator, not this relay.
func (r *Relay) markAsRead(c *Client, ev InboundEvent) error {
	if ev.ChannelID == "" {
		return ErrMissingChannelID
	}
	r.logf("relay: mark_as_read channel=%s user=%s conn=%s", ev.ChannelID, ev.UserID, c.id)
	return nil
}

// broadcast delivers a payload to every member of a channel. Delivery is
// at-most-once: a member whose socket died or whose send buffer is full is
// skipped and evicted, with no retry and no error back to the sender.
func (r *Relay) broadcast(channelID string, payload []byte) {
	members := r.rooms.Members(channelID)

	var failed []*Client
	for _, m := range members {
		if !r.safeSend(m, payload) {
			failed = append(failed, m)
		}
	}
	r.evict(failed)
}

// sendEvent marshals a frame and delivers it to a single connection.
func (r *Relay) sendEvent(c *Client, frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		r.logf("relay: failed to marshal frame for %s: %v", c.id, err)
		return
	}
	if !r.safeSend(c, payload) {
		r.evict([]*Client{c})
	}
}

func (r *Relay) replyError(c *Client, cause error) {
	r.sendEvent(c, ErrorEvent{Event: EventError, Message: cause.Error()})
}

func (r *Relay) safeSend(c *Client, payload []byte) bool {
	defer func() {
		if rec := recover(); rec != nil {
			r.logf("relay: recovered from panic in safeSend: %v", rec)
		}
	}()

	// Hold the lock across the send so the channel cannot be closed between
	// the liveness check and the write.
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.clients[c]; !ok || c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// evict removes clients whose delivery failed and closes their send channels.
func (r *Relay) evict(failed []*Client) {
	if len(failed) == 0 {
		return
	}

	r.mu.Lock()
	var channels []chan []byte
	for _, c := range failed {
		if _, ok := r.clients[c]; !ok {
			continue
		}
		delete(r.clients, c)
		c.closed = true
		channels = append(channels, c.send)
		r.logf("relay: connection %s evicted, send buffer unavailable", c.id)
	}
	r.mu.Unlock()

	for _, c := range failed {
		r.registry.Unregister(c.id)
		r.rooms.DropAll(c)
	}

	// Close the channels after releasing the lock.
	for _, ch := range channels {
		close(ch)
	}
}

// closeAllClients closes every live socket during shutdown so the pump
// goroutines unwind.
func (r *Relay) closeAllClients() {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
				r.logf("relay: error closing connection %s: %v", c.id, err)
			}
		}
	}

	r.logf("relay: closed %d client connections", len(clients))
}

// Shutdown stops the run loop, closes every client connection, and waits for
// the pump goroutines to finish or the timeout to pass. In-flight fan-out
// completes before the loop observes cancellation.
func (r *Relay) Shutdown(timeout time.Duration) error {
	r.logf("relay: shutting down")

	r.cancel()
	<-r.done

	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		r.logf("relay: shutdown complete")
		return nil
	case <-time.After(timeout):
		r.logf("relay: shutdown timed out, some pump goroutines may still be running")
		return context.DeadlineExceeded
	}
}
