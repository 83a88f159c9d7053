package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"boardsync/internal/model"
)

// reconnectDelay is the fixed backoff before redialing after an
// abnormal closure.
const reconnectDelay = 3 * time.Second

var ErrNotConnected = errors.New("socket not connected")

// Events are the callbacks a Socket raises. Handlers run on the read
// goroutine in arrival order; nil handlers are skipped.
type Events struct {
	OnSync   func(shapes []model.Shape, version int)
	OnDraw   func(shape model.Shape)
	OnDelete func(shapeID string)
	OnClear  func()
	OnState  func(connected bool)
}

// Socket is one board-scoped connection with automatic reconnect.
// Reconnects are suppressed while a dial is in flight and permanently
// after Close.
type Socket struct {
	url    string
	events Events
	dialer *websocket.Dialer

	writeMu sync.Mutex

	mu         sync.Mutex
	conn       *websocket.Conn
	connecting bool
	disposed   bool
	retry      *time.Timer
}

func NewSocket(baseURL, boardID, token string, events Events) *Socket {
	endpoint := fmt.Sprintf("%s/ws/boards/%s?token=%s",
		strings.TrimRight(baseURL, "/"), boardID, url.QueryEscape(token))
	return &Socket{url: endpoint, events: events, dialer: websocket.DefaultDialer}
}

// Connect dials the board endpoint and starts the read loop. A failed
// dial schedules a retry and returns the dial error.
func (s *Socket) Connect() error {
	s.mu.Lock()
	if s.disposed || s.connecting || s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	s.connecting = true
	s.mu.Unlock()

	conn, _, err := s.dialer.Dial(s.url, nil)

	s.mu.Lock()
	s.connecting = false
	if err != nil {
		disposed := s.disposed
		s.mu.Unlock()
		if !disposed {
			s.scheduleReconnect()
		}
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	if s.disposed {
		s.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	s.conn = conn
	s.mu.Unlock()

	if s.events.OnState != nil {
		s.events.OnState(true)
	}
	go s.readLoop(conn)
	return nil
}

// Close tears the socket down for good: the connection is closed with
// a normal close code and any pending reconnect timer is cancelled.
func (s *Socket) Close() {
	s.mu.Lock()
	s.disposed = true
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Socket) SendDraw(shape model.Shape) error {
	return s.send(model.MessageDraw, model.DrawPayload{Object: shape})
}

func (s *Socket) SendDelete(shapeID string) error {
	return s.send(model.MessageDelete, model.DeletePayload{ObjectID: shapeID})
}

func (s *Socket) SendClear() error {
	return s.send(model.MessageClear, struct{}{})
}

func (s *Socket) send(msgType string, payload any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	frame, err := model.EncodeMessage(msgType, payload)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func (s *Socket) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.handleDisconnect(conn, err)
			return
		}
		for _, frame := range splitFrames(data) {
			s.dispatch(frame)
		}
	}
}

func (s *Socket) handleDisconnect(conn *websocket.Conn, err error) {
	_ = conn.Close()

	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	disposed := s.disposed
	s.mu.Unlock()

	if s.events.OnState != nil {
		s.events.OnState(false)
	}
	if disposed || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		return
	}
	s.scheduleReconnect()
}

func (s *Socket) scheduleReconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.retry != nil {
		return
	}
	s.retry = time.AfterFunc(reconnectDelay, func() {
		s.mu.Lock()
		s.retry = nil
		s.mu.Unlock()
		_ = s.Connect()
	})
}

// splitFrames breaks a transport frame into its newline-delimited
// envelopes; the server coalesces backlog this way.
func splitFrames(data []byte) [][]byte {
	parts := bytes.Split(data, []byte{'\n'})
	frames := parts[:0]
	for _, p := range parts {
		if len(p) > 0 {
			frames = append(frames, p)
		}
	}
	return frames
}

func (s *Socket) dispatch(frame []byte) {
	var msg model.Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		log.Printf("client: malformed frame dropped: %v", err)
		return
	}

	switch msg.Type {
	case model.MessageSync:
		var payload model.SyncPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.Printf("client: bad sync payload: %v", err)
			return
		}
		if s.events.OnSync != nil {
			s.events.OnSync(payload.Objects, payload.Version)
		}
	case model.MessageDraw:
		var payload model.DrawPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.Printf("client: bad draw payload: %v", err)
			return
		}
		if s.events.OnDraw != nil {
			s.events.OnDraw(payload.Object)
		}
	case model.MessageDelete:
		var payload model.DeletePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.Printf("client: bad delete payload: %v", err)
			return
		}
		if s.events.OnDelete != nil {
			s.events.OnDelete(payload.ObjectID)
		}
	case model.MessageClear:
		if s.events.OnClear != nil {
			s.events.OnClear()
		}
	default:
		log.Printf("client: unknown message type %q dropped", msg.Type)
	}
}
