// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ttbt-io/playerradar/backend/chart"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// Message types for WebSocket communication
const (
	MsgTypeSelect     = "SELECT"
	MsgTypeSwap       = "SWAP"
	MsgTypeState      = "STATE"
	MsgTypeComparison = "COMPARISON"
	MsgTypeError      = "ERROR"
	MsgTypePing       = "PING"
	MsgTypePong       = "PONG"
)

// Message represents a WebSocket message
type Message struct {
	Type       string      `json:"type"`
	SessionID  string      `json:"sessionId,omitempty"`
	Slot       Slot        `json:"slot,omitempty"`
	ID         string      `json:"id,omitempty"`
	Comparison *Comparison `json:"comparison,omitempty"`
	Error      string      `json:"error,omitempty"`
}

var (
	errUnknownMessage = errors.New("unknown message type")
	errInvalidSlot    = errors.New("slot must be \"a\" or \"b\"")
)

// applyMessage returns the selection after msg. Selecting an id that is
// not in the catalog is accepted; the comparison falls back to the slot
// default.
func applyMessage(sel Selection, msg Message) (Selection, error) {
	switch msg.Type {
	case MsgTypeSelect:
		if !msg.Slot.Valid() {
			return sel, errInvalidSlot
		}
		return sel.With(msg.Slot, msg.ID), nil
	case MsgTypeSwap:
		return sel.Swap(), nil
	case MsgTypeState:
		return sel, nil
	}
	return sel, fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
}

// Session is the selection state of one connected page. Its requests are
// processed one at a time by run.
type Session struct {
	id        string
	selection Selection

	// Inbound requests, closed by readPump.
	requests chan Message

	// Buffered channel of outbound messages.
	send chan Message

	conn *websocket.Conn
	sm   *SessionManager
}

// SessionManager tracks the open sessions.
type SessionManager struct {
	catalog *Catalog
	opts    chart.Options
	debugf  func(string, ...any)

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(c *Catalog, opts chart.Options, debugf func(string, ...any)) *SessionManager {
	if debugf == nil {
		debugf = func(string, ...any) {}
	}
	return &SessionManager{
		catalog:  c,
		opts:     opts,
		debugf:   debugf,
		sessions: make(map[string]*Session),
	}
}

// Count returns the number of open sessions.
func (sm *SessionManager) Count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

func (sm *SessionManager) add(s *Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[s.id] = s
}

func (sm *SessionManager) remove(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, id)
}

func (s *Session) run() {
	defer func() {
		s.sm.remove(s.id)
		close(s.send)
		s.sm.debugf("session %s closed", s.id)
	}()

	s.sendJSON(s.comparisonMessage())
	for msg := range s.requests {
		next, err := applyMessage(s.selection, msg)
		if err != nil {
			s.sendJSON(Message{Type: MsgTypeError, SessionID: s.id, Error: err.Error()})
			continue
		}
		s.sm.debugf("session %s: %s %+v -> %+v", s.id, msg.Type, s.selection, next)
		s.selection = next
		s.sendJSON(s.comparisonMessage())
	}
}

func (s *Session) comparisonMessage() Message {
	cmp := Compare(s.sm.catalog, s.selection, s.sm.opts)
	return Message{Type: MsgTypeComparison, SessionID: s.id, Comparison: &cmp}
}

// readPump pumps messages from the websocket connection to the session.
func (s *Session) readPump() {
	defer func() {
		close(s.requests)
		s.conn.Close()
	}()
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		var msg Message
		err := s.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("session %s: %v", s.id, err)
			}
			break
		}
		if msg.Type == MsgTypePing {
			s.sendJSON(Message{Type: MsgTypePong, SessionID: s.id})
			continue
		}
		s.requests <- msg
	}
}

// writePump pumps messages from the session to the websocket connection.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The session closed the channel.
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) sendJSON(msg Message) {
	select {
	case s.send <- msg:
	default:
		log.Printf("session %s: send buffer full, dropping %s", s.id, msg.Type)
	}
}

// ServeWS upgrades the request and starts a session. The optional a and b
// query parameters set the initial selection.
func (sm *SessionManager) ServeWS(w http.ResponseWriter, r *http.Request) {
	sel := sm.catalog.DefaultSelection()
	q := r.URL.Query()
	if a := q.Get("a"); a != "" {
		sel.A = a
	}
	if b := q.Get("b"); b != "" {
		sel.B = b
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	s := &Session{
		id:        uuid.NewString(),
		selection: sel,
		requests:  make(chan Message, 16),
		send:      make(chan Message, 64),
		conn:      conn,
		sm:        sm,
	}
	sm.add(s)
	sm.debugf("session %s opened with %+v", s.id, sel)

	go s.run()
	go s.writePump()
	go s.readPump()
}
