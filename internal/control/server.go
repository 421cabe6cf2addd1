// ABOUTME: WebSocket control server for remote editing of a session
// ABOUTME: Translates protocol requests into session commands and replies with state
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Melonix-Audio/melonix-go/internal/session"
	"github.com/Melonix-Audio/melonix-go/internal/version"
	"github.com/Melonix-Audio/melonix-go/pkg/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is the document the server edits
type Session interface {
	AddMarker(sample int, note, pitchBend float64) (uuid.UUID, error)
	AddMarkerAt(t, note float64) (uuid.UUID, error)
	MoveMarker(id uuid.UUID, dTime, pitchBend float64) error
	RemoveMarker(id uuid.UUID) error
	SetCursor(t float64) error
	TogglePlay() (bool, error)
	SampleToTime(sample int) float64
	State() session.State
}

// Config holds server configuration
type Config struct {
	// Addr is the listen address, e.g. ":8928"
	Addr string
	Name string
}

// Server serves the control protocol
type Server struct {
	config   Config
	serverID string
	session  Session

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server
	listener   net.Listener

	connsMu sync.Mutex
	conns   map[*websocket.Conn]struct{}
	closed  bool

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a control server for sess
func New(config Config, sess Session) *Server {
	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		session:  sess,
		mux:      http.NewServeMux(),
		conns:    make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Non-browser clients send no Origin header
				origin := r.Header.Get("Origin")
				if origin != "" {
					log.Printf("Warning: accepting WebSocket from origin: %s", origin)
				}
				return true
			},
		},
	}
	s.mux.HandleFunc(protocol.Path, s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler serving the protocol endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("Control server %s (ID: %s) listening on %s", s.config.Name, s.serverID, ln.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Control server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound TCP port, or 0 before Start
func (s *Server) Port() int {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Stop shuts the server down and closes open connections
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.connsMu.Lock()
		s.closed = true
		for conn := range s.conns {
			conn.Close()
		}
		s.connsMu.Unlock()

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Printf("Control server shutdown error: %v", err)
			}
		}

		s.wg.Wait()
		log.Printf("Control server stopped")
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New control connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection greets the client and answers requests until it leaves
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.connsMu.Lock()
	if s.closed {
		s.connsMu.Unlock()
		log.Printf("Rejecting connection during shutdown")
		return
	}
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()

	defer func() {
		s.connsMu.Lock()
		delete(s.conns, conn)
		s.connsMu.Unlock()
		log.Printf("Control client disconnected")
	}()

	hello := protocol.ServerHello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Product:  version.Product,
		Version:  version.Version,
	}
	if err := conn.WriteJSON(protocol.Message{Type: protocol.TypeServerHello, Payload: hello}); err != nil {
		log.Printf("Error sending server hello: %v", err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			reply := errorReply("", &protocol.Error{Code: protocol.CodeBadRequest, Message: err.Error()})
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(s.handle(msg)); err != nil {
			log.Printf("Error sending reply: %v", err)
			return
		}
	}
}

// handle applies one request and builds its reply
func (s *Server) handle(msg protocol.Message) protocol.Message {
	var added uuid.UUID
	var err error

	switch msg.Type {
	case protocol.TypeStateGet:

	case protocol.TypeMarkerAdd:
		var req protocol.AddMarker
		if err = protocol.DecodePayload(msg, &req); err != nil {
			break
		}
		if req.Time != nil {
			added, err = s.session.AddMarkerAt(*req.Time, req.Note)
		} else {
			added, err = s.session.AddMarker(req.Sample, req.Note, req.PitchBend)
		}

	case protocol.TypeMarkerMove:
		var req protocol.MoveMarker
		if err = protocol.DecodePayload(msg, &req); err != nil {
			break
		}
		var id uuid.UUID
		if id, err = parseID(req.ID); err != nil {
			break
		}
		err = s.session.MoveMarker(id, req.DTime, req.PitchBend)

	case protocol.TypeMarkerRemove:
		var req protocol.RemoveMarker
		if err = protocol.DecodePayload(msg, &req); err != nil {
			break
		}
		var id uuid.UUID
		if id, err = parseID(req.ID); err != nil {
			break
		}
		err = s.session.RemoveMarker(id)

	case protocol.TypeCursorSet:
		var req protocol.SetCursor
		if err = protocol.DecodePayload(msg, &req); err != nil {
			break
		}
		err = s.session.SetCursor(req.Time)

	case protocol.TypePlaybackToggle:
		_, err = s.session.TogglePlay()

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		return errorReply(msg.ID, &protocol.Error{
			Code:    protocol.CodeUnknownType,
			Message: fmt.Sprintf("unknown message type %q", msg.Type),
		})
	}

	if err != nil {
		return errorReply(msg.ID, toProtocolError(err))
	}

	state := s.state()
	if added != uuid.Nil {
		state.Added = added.String()
	}
	return protocol.Message{Type: protocol.TypeSessionState, ID: msg.ID, Payload: state}
}

// state converts a session snapshot to its wire form
func (s *Server) state() protocol.SessionState {
	st := s.session.State()
	out := protocol.SessionState{
		Path:       st.Path,
		SampleRate: st.SampleRate,
		Samples:    st.Samples,
		Grains:     st.Grains,
		Cursor:     st.Cursor,
		Duration:   st.Duration,
		Playing:    st.Playing,
		Markers:    make([]protocol.MarkerInfo, 0, len(st.Markers)),
	}
	for _, mk := range st.Markers {
		out.Markers = append(out.Markers, protocol.MarkerInfo{
			ID:        mk.ID.String(),
			Sample:    mk.Sample,
			Time:      s.session.SampleToTime(mk.Sample),
			Note:      mk.Note,
			DTime:     mk.DTime,
			PitchBend: mk.PitchBend,
		})
	}
	return out
}

// errBadRequest marks malformed requests
var errBadRequest = errors.New("bad request")

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: marker id %q: %v", errBadRequest, s, err)
	}
	return id, nil
}

func toProtocolError(err error) *protocol.Error {
	code := protocol.CodeBadRequest
	switch {
	case errors.Is(err, session.ErrNoDocument):
		code = protocol.CodeNoDocument
	case errors.Is(err, session.ErrMarkerNotFound):
		code = protocol.CodeMarkerNotFound
	}
	return &protocol.Error{Code: code, Message: err.Error()}
}

func errorReply(id string, perr *protocol.Error) protocol.Message {
	return protocol.Message{Type: protocol.TypeError, ID: id, Payload: perr}
}
