// ABOUTME: Melonix control protocol package
// ABOUTME: Defines protocol messages and WebSocket client
// Package protocol implements the Melonix remote-control protocol.
//
// Requests are JSON messages with a type, an id and a payload. The server
// answers every request with a session/state or error message carrying
// the same id.
//
// Example:
//
//	client, err := protocol.Dial("localhost:8928")
//	state, err := client.AddMarker(24000, 60, 0)
//	state, err = client.TogglePlay()
package protocol
