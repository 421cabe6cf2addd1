// ABOUTME: WebSocket client for the Melonix control protocol
// ABOUTME: Sends commands and waits for the matching state or error reply
package protocol

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is a connection to a control server
type Client struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	timeout time.Duration

	// Hello is the greeting received on connect
	Hello ServerHello
}

// Dial connects to the control server at addr (host:port)
func Dial(addr string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	c := &Client{conn: conn, timeout: 5 * time.Second}

	// Wait for server/hello (with timeout)
	msg, err := c.read()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read server/hello: %w", err)
	}
	if msg.Type != TypeServerHello {
		conn.Close()
		return nil, fmt.Errorf("expected %s, got %s", TypeServerHello, msg.Type)
	}
	if err := DecodePayload(msg, &c.Hello); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("Connected to %s (%s %s)", c.Hello.Name, c.Hello.Product, c.Hello.Version)
	return c, nil
}

func (c *Client) read() (Message, error) {
	c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	defer c.conn.SetReadDeadline(time.Time{})

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return Message{}, err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to parse message: %w", err)
	}
	return msg, nil
}

// Do sends a request and returns the state reply. A server error reply is
// returned as *Error.
func (c *Client) Do(msgType string, payload interface{}) (SessionState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := Message{Type: msgType, ID: uuid.NewString(), Payload: payload}
	if err := c.conn.WriteJSON(req); err != nil {
		return SessionState{}, fmt.Errorf("failed to send %s: %w", msgType, err)
	}

	for {
		msg, err := c.read()
		if err != nil {
			return SessionState{}, fmt.Errorf("failed to read reply to %s: %w", msgType, err)
		}
		if msg.ID != req.ID {
			log.Printf("Ignoring unrelated %s message", msg.Type)
			continue
		}

		switch msg.Type {
		case TypeSessionState:
			var state SessionState
			if err := DecodePayload(msg, &state); err != nil {
				return SessionState{}, err
			}
			return state, nil
		case TypeError:
			remote := &Error{}
			if err := DecodePayload(msg, remote); err != nil {
				return SessionState{}, err
			}
			return SessionState{}, remote
		default:
			return SessionState{}, fmt.Errorf("unexpected reply type %s", msg.Type)
		}
	}
}

// State fetches the current session state
func (c *Client) State() (SessionState, error) {
	return c.Do(TypeStateGet, nil)
}

// AddMarker places a marker at a recording sample
func (c *Client) AddMarker(sample int, note, pitchBend float64) (SessionState, error) {
	return c.Do(TypeMarkerAdd, AddMarker{Sample: sample, Note: note, PitchBend: pitchBend})
}

// AddMarkerAt places a marker at an edited time
func (c *Client) AddMarkerAt(t, note float64) (SessionState, error) {
	return c.Do(TypeMarkerAdd, AddMarker{Time: &t, Note: note})
}

// MoveMarker sets a marker's stretch and pitch bend
func (c *Client) MoveMarker(id string, dTime, pitchBend float64) (SessionState, error) {
	return c.Do(TypeMarkerMove, MoveMarker{ID: id, DTime: dTime, PitchBend: pitchBend})
}

// RemoveMarker deletes a marker
func (c *Client) RemoveMarker(id string) (SessionState, error) {
	return c.Do(TypeMarkerRemove, RemoveMarker{ID: id})
}

// SetCursor moves the playback cursor
func (c *Client) SetCursor(t float64) (SessionState, error) {
	return c.Do(TypeCursorSet, SetCursor{Time: t})
}

// TogglePlay starts or stops playback
func (c *Client) TogglePlay() (SessionState, error) {
	return c.Do(TypePlaybackToggle, nil)
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
