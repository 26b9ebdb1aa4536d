package relay

import "errors"

// Validation errors surfaced at the component boundary. The wire-visible
// effect of each is an ErrorEvent sent to the offending connection only; no
// other connection or channel is affected.
var (
	ErrMalformedFrame   = errors.New("malformed event frame")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrMissingUserID    = errors.New("join requires a userId")
	ErrMissingChannelID = errors.New("event requires a channelId")
)
