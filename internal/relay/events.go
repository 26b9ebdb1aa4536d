// Package relay defines the wire-level event frames exchanged with clients and
// utility helpers reused across client and relay logic.
package relay

import "strings"

// Event names accepted from clients.
const (
	// EventIdentify associates an application user identity with the
	// connection. The historical client sends this as "join".
	EventIdentify          = "join"
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
	EventSendMessage       = "send_message"
	EventMarkAsRead        = "mark_as_read"
)

// Event names emitted to clients.
const (
	EventRoomJoined      = "room_joined"
	EventMessageReceived = "message_received"
	EventError           = "error"
)

// DefaultMessageType is stamped on envelopes whose sender did not tag the
// message. Clients also send "attachment" and similar tags; the relay does not
// interpret them.
const DefaultMessageType = "text"

// InboundEvent is the single flat frame shape read from a client socket.
// Which fields are meaningful depends on Event; unknown fields are ignored.
type InboundEvent struct {
	Event          string `json:"event"`
	UserID         string `json:"userId,omitempty"`
	ChannelID      string `json:"channelId,omitempty"`
	Content        string `json:"content,omitempty"`
	MessageType    string `json:"messageType,omitempty"`
	AttachmentURL  string `json:"attachmentUrl,omitempty"`
	AttachmentName string `json:"attachmentName,omitempty"`
	AttachmentType string `json:"attachmentType,omitempty"`
	AttachmentSize int64  `json:"attachmentSize,omitempty"`
	SentAt         string `json:"sentAt,omitempty"`
}

// Envelope is the message_received frame broadcast to every member of the
// target channel. It exists only transiently during fan-out; once delivered
// the relay discards it.
type Envelope struct {
	Event          string `json:"event"`
	ChannelID      string `json:"channelId"`
	SenderID       string `json:"senderId"`
	Content        string `json:"content"`
	MessageType    string `json:"messageType"`
	SentAt         string `json:"sentAt"`
	AttachmentURL  string `json:"attachmentUrl,omitempty"`
	AttachmentName string `json:"attachmentName,omitempty"`
	AttachmentType string `json:"attachmentType,omitempty"`
	AttachmentSize int64  `json:"attachmentSize,omitempty"`
}

// RoomJoined is sent back to the joining connection only, confirming
// membership and reporting the current member count.
type RoomJoined struct {
	Event     string `json:"event"`
	ChannelID string `json:"channelId"`
	RoomSize  int    `json:"roomSize"`
}

// ErrorEvent is sent back to the originating connection when a frame fails
// validation. Other connections never observe it.
type ErrorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
