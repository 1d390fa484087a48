/*
Package chat contains the real-time delivery layer: live WebSocket sessions,
the user-to-session registry used for fan-out, and the wire frame types.

This file defines the Session struct, representing one open WebSocket connection.
It manages the connection lifecycle, the read and write pumps, and registration
against the Registry.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 4096

	// capacity of the per-session outbound queue.
	sendQueueSize = 256
)

// Session represents one open WebSocket connection. A session is associated
// with zero or one registered user identity; registration happens through an
// inbound register frame and may be repeated (last registration wins).
type Session struct {
	// id uniquely identifies this connection for logging and registry bookkeeping.
	id string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// registry this session registers against and is removed from on disconnect.
	registry *Registry

	// a buffered channel used to queue payloads waiting to be sent to the client.
	send chan []byte

	// mu guards closed; send must not be written to after it is closed.
	mu     sync.Mutex
	closed bool

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession constructs a Session for an upgraded WebSocket connection.
func NewSession(conn *websocket.Conn, registry *Registry) *Session {
	id := uuid.NewString()

	return &Session{
		id:       id,
		conn:     conn,
		registry: registry,
		send:     make(chan []byte, sendQueueSize),
		logger:   logx.Logger().With().Str("session_id", id).Logger(),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Send queues a payload for delivery to the client. It never blocks: when the
// outbound queue is full or the session is closed, the payload is dropped and
// an error is returned. Delivery is best-effort; the caller must not treat a
// failed push as fatal.
func (s *Session) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session %s is closed", s.id)
	}

	select {
	case s.send <- payload:
		return nil
	default:
		s.logger.Warn().Int("queue_len", len(s.send)).Msg("Session send queue full, dropping payload")
		return fmt.Errorf("session %s send queue full", s.id)
	}
}

// Close shuts the outbound queue, which makes the write pump send a close
// frame and tear the connection down. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), register frames, and performs cleanup upon
// connection closure. It blocks until the connection drops.
func (s *Session) ReadPump() {
	defer s.cleanupOnDisconnect()

	s.conn.SetReadLimit(maxMessageSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		s.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the session's ReadPump terminates.
// The session leaves every delivery group immediately; in-flight message
// persistence is unaffected.
func (s *Session) cleanupOnDisconnect() {
	s.logger.Info().Msg("Session disconnected, cleanup starting.")

	s.registry.UnregisterAll(s)
	s.Close()

	if err := s.conn.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("Session connection close error")
	}
}

// processInboundFrame handles raw byte frames received from the client.
func (s *Session) processInboundFrame(frameBytes []byte) {
	var frame InboundFrame

	if err := json.Unmarshal(frameBytes, &frame); err != nil {
		s.logger.Warn().Err(err).
			Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch frame.Event {
	case EventRegister:
		s.handleRegister(frame)

	default:
		s.logger.Warn().Str("event", string(frame.Event)).Msg("Client sent unsupported event")
	}
}

// handleRegister joins the session to the delivery group for the claimed user
// identity. The identity is not authenticated or validated against the user
// table; any claimed identity is accepted.
func (s *Session) handleRegister(frame InboundFrame) {
	if frame.UserID <= 0 {
		s.logger.Warn().Int64("user_id", frame.UserID).Msg("Register frame with invalid user id ignored")
		return
	}

	s.registry.Register(s, frame.UserID)
}

// WritePump handles writing payloads from the send channel to the WebSocket connection.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Session connection close error in WritePump")
		}
	}()

	for {
		select {
		case payload, ok := <-s.send:
			if !s.writeQueuedPayload(payload, ok) {
				return
			}

		case <-ticker.C:
			if !s.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedPayload handles payloads pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (s *Session) writeQueuedPayload(payload []byte, ok bool) bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := s.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			s.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.logger.Error().Err(err).Msg("Error writing payload")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (s *Session) writePingMessage() bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		s.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
