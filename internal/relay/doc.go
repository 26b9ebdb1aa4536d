// Package relay implements the real-time conversation relay: it tracks which
// connection belongs to which user, which conversation channels each
// connection has joined, and fans inbound messages out to every current
// member of the target channel, including the sender.
//
// The implementation is organized into specialized files for configuration,
// the relay run loop, room membership, the connection registry, per-client
// pumps, routing, and HTTP handlers to keep the codebase maintainable and
// testable as the project grows. Messages are never persisted; all state is
// held in process memory for the lifetime of a connection.
package relay
