// ABOUTME: Melonix control protocol message type definitions
// ABOUTME: Defines the request, reply and state structs exchanged over the websocket
package protocol

import (
	"encoding/json"
	"fmt"
)

// Path is the websocket endpoint of the control server
const Path = "/melonix"

// Message types
const (
	TypeServerHello    = "server/hello"
	TypeMarkerAdd      = "marker/add"
	TypeMarkerMove     = "marker/move"
	TypeMarkerRemove   = "marker/remove"
	TypeCursorSet      = "cursor/set"
	TypePlaybackToggle = "playback/toggle"
	TypeStateGet       = "state/get"
	TypeSessionState   = "session/state"
	TypeError          = "error"
)

// Error codes
const (
	CodeBadRequest     = "bad_request"
	CodeNoDocument     = "no_document"
	CodeMarkerNotFound = "marker_not_found"
	CodeUnknownType    = "unknown_type"
)

// Message is the top-level wrapper for all protocol messages.
// Replies carry the ID of the request they answer.
type Message struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// DecodePayload converts a generic payload into v
func DecodePayload(msg Message, v interface{}) error {
	if msg.Payload == nil {
		return nil
	}
	payloadBytes, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", msg.Type, err)
	}
	if err := json.Unmarshal(payloadBytes, v); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", msg.Type, err)
	}
	return nil
}

// ServerHello is sent by the server when a client connects
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Product  string `json:"product"`
	Version  string `json:"version"`
}

// AddMarker places a marker. When Time is set the marker is placed at
// that edited time and keeps the current pitch curve; otherwise Sample,
// Note and PitchBend are used as given.
type AddMarker struct {
	Sample    int      `json:"sample"`
	Time      *float64 `json:"time,omitempty"`
	Note      float64  `json:"note"`
	PitchBend float64  `json:"pitch_bend"`
}

// MoveMarker sets a marker's stretch and pitch bend
type MoveMarker struct {
	ID        string  `json:"id"`
	DTime     float64 `json:"d_time"`
	PitchBend float64 `json:"pitch_bend"`
}

// RemoveMarker deletes a marker
type RemoveMarker struct {
	ID string `json:"id"`
}

// SetCursor moves the playback cursor
type SetCursor struct {
	Time float64 `json:"time"`
}

// MarkerInfo describes one marker in a state reply
type MarkerInfo struct {
	ID        string  `json:"id"`
	Sample    int     `json:"sample"`
	Time      float64 `json:"time"`
	Note      float64 `json:"note"`
	DTime     float64 `json:"d_time"`
	PitchBend float64 `json:"pitch_bend"`
}

// SessionState is the reply to every successful request
type SessionState struct {
	Path       string       `json:"path,omitempty"`
	SampleRate int          `json:"sample_rate"`
	Samples    int          `json:"samples"`
	Grains     int          `json:"grains"`
	Cursor     float64      `json:"cursor"`
	Duration   float64      `json:"duration"`
	Playing    bool         `json:"playing"`
	Markers    []MarkerInfo `json:"markers"`
	// Added is the id of the marker created by marker/add
	Added string `json:"added,omitempty"`
}

// Error is the reply to a failed request
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
