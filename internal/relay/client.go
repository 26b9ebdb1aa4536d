// Package relay manages individual WebSocket clients, handling read/write
// pumps, heartbeat, rate limiting, and lifecycle control for each connection.
package relay

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// writeWait bounds each outbound write, pings included.
const writeWait = 10 * time.Second

// Client represents one live transport session between a browser and the
// relay. The connection id is assigned here, not by the client, and is never
// reused: a reconnecting client gets a fresh id and must re-identify and
// re-join its channels.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	relay  *Relay
	addr   string
	closed bool

	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration
	maxMessageSize    int64
	limiter           *rateLimiter
	limiterCfg        RateLimitConfig
}

// NewClient wraps an upgraded WebSocket connection. The send channel is
// buffered so a briefly slow reader does not stall fan-out.
func NewClient(conn *websocket.Conn, r *Relay, addr string) *Client {
	cfg := currentConfig()
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	return &Client{
		id:                uuid.NewString(),
		conn:              conn,
		send:              make(chan []byte, 256),
		relay:             r,
		addr:              addr,
		heartbeatInterval: cfg.Heartbeat.Interval,
		heartbeatTimeout:  cfg.Heartbeat.Timeout,
		maxMessageSize:    cfg.MaxMessageSize,
		limiter:           newRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		limiterCfg:        cfg.RateLimit,
	}
}

// ID returns the opaque connection id the relay assigned to this session.
func (c *Client) ID() string {
	return c.id
}

// Outbox returns the client's send channel for reading outgoing payloads.
func (c *Client) Outbox() <-chan []byte {
	return c.send
}

// setupReadConnection arms the heartbeat: a read deadline that each pong
// pushes forward. A client that stops answering pings times out and is torn
// down like any other disconnect.
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.heartbeatTimeout)); err != nil {
		c.relay.logf("relay: error setting read deadline for %s: %v", c.addr, err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.heartbeatTimeout)); err != nil {
			c.relay.logf("relay: error resetting read deadline for %s: %v", c.addr, err)
		}
		return nil
	})
}

// handleReadError classifies a read failure and reports whether the read loop
// should stop. Every branch stops; the split exists for log clarity.
func (c *Client) handleReadError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, websocket.ErrReadLimit) {
		c.relay.logf("relay: frame from %s exceeded %d bytes", c.addr, c.maxMessageSize)
		return true
	}

	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) {
		c.relay.logf("relay: client %s disconnected: %v", c.addr, err)
		return true
	}

	if errors.Is(err, io.EOF) || isExpectedCloseError(err) {
		c.relay.logf("relay: client %s connection closed: %v", c.addr, err)
		return true
	}

	c.relay.logf("relay: read error from %s: %v", c.addr, err)
	return true
}

// checkRateLimit reports whether the frame may be processed. Frames over the
// limit are discarded, never queued.
func (c *Client) checkRateLimit() bool {
	if c.limiter != nil && !c.limiter.allow() {
		c.relay.logf("relay: rate limit exceeded for %s (%d per %s); discarding frame",
			c.addr, c.limiterCfg.Burst, c.limiterCfg.RefillInterval)
		return false
	}
	return true
}

// processFrame decodes one inbound frame and hands it to the relay. A frame
// that is not valid JSON gets an error event back; nothing else sees it.
func (c *Client) processFrame(raw []byte) {
	var ev InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.relay.logf("relay: malformed frame from %s: %v", c.addr, err)
		c.relay.replyError(c, ErrMalformedFrame)
		return
	}
	c.relay.submit(c, ev)
}

func (c *Client) readPump() {
	defer func() {
		c.relay.Detach(c)
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.relay.logf("relay: error closing connection in readPump: %v", err)
		}
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if c.handleReadError(err) {
				break
			}
		}

		if !c.checkRateLimit() {
			continue
		}

		c.processFrame(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.heartbeatInterval)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.relay.logf("relay: error closing connection in writePump: %v", err)
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.relay.logf("relay: error setting write deadline for %s: %v", c.addr, err)
				return
			}
			if !ok {
				// The relay closed the channel; tell the peer we are done.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
					c.relay.logf("relay: error writing close message to %s: %v", c.addr, err)
				}
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !isExpectedCloseError(err) {
					c.relay.logf("relay: error writing to %s: %v", c.addr, err)
				}
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
