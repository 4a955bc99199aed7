package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roman-kulish/flythrough/internal/pose"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024

	// sendBuffer is the number of messages queued per viewer before poses
	// are dropped for that viewer.
	sendBuffer = 64
)

var (
	ErrClosed   = errors.New("renderer closed")
	ErrNoViewer = errors.New("no viewer connected")
)

// Message types exchanged with the viewer.
const (
	MessageReady = "ready"
	MessageView  = "view"
	MessagePose  = "pose"
)

// Message is the JSON envelope sent to and received from viewers.
type Message struct {
	Type    string       `json:"type"`
	Seq     uint64       `json:"seq,omitempty"`
	View    *View        `json:"view,omitempty"`
	Pose    *PoseMessage `json:"pose,omitempty"`
	Name    string       `json:"name,omitempty"`
	Version string       `json:"version,omitempty"`
}

type PoseMessage struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Distance float64 `json:"distance"`
	Pitch    float64 `json:"pitch"`
	Yaw      float64 `json:"yaw"`
}

type WebSocketOption func(*WebSocketPort)

func WithWebSocketLogger(logger *slog.Logger) WebSocketOption {
	return func(p *WebSocketPort) {
		p.logger = logger.With(slog.String("component", "renderer"))
	}
}

// WithCheckOrigin replaces the default same-origin check of the upgrader.
func WithCheckOrigin(fn func(r *http.Request) bool) WebSocketOption {
	return func(p *WebSocketPort) {
		p.upgrader.CheckOrigin = fn
	}
}

// WebSocketPort streams poses to browser viewers. The port becomes ready when
// the first viewer announces itself with a "ready" message; every pose is
// broadcast to all connected viewers.
type WebSocketPort struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	view     *View
	viewport Viewport
	closed   bool

	seq       atomic.Uint64
	dropped   atomic.Uint64
	ready     chan struct{}
	readyOnce sync.Once
}

func NewWebSocketPort(opts ...WebSocketOption) *WebSocketPort {
	p := &WebSocketPort{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		clients:  make(map[*wsClient]struct{}),
		viewport: Viewport{ID: uuid.New(), Name: "websocket"},
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handler upgrades requests to WebSocket connections and serves viewers.
func (p *WebSocketPort) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := p.upgrader.Upgrade(w, r, nil)
		if err != nil {
			p.logger.Warn("websocket upgrade failed", slog.Any("error", err))
			return
		}

		c := &wsClient{port: p, conn: conn, send: make(chan []byte, sendBuffer)}
		if err = p.register(c); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error()),
				time.Now().Add(writeWait))
			_ = conn.Close()
			return
		}

		p.logger.Info("viewer connected", slog.String("remote", r.RemoteAddr))

		go c.writePump()
		c.readPump()
	})
}

func (p *WebSocketPort) register(c *wsClient) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.clients[c] = struct{}{}

	// Late joiners get the current view before any pose.
	if p.view != nil {
		if data, err := json.Marshal(Message{Type: MessageView, View: p.view}); err == nil {
			c.send <- data
		}
	}
	return nil
}

func (p *WebSocketPort) unregister(c *wsClient) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.clients[c]; ok {
		delete(p.clients, c)
		close(c.send)
		p.logger.Info("viewer disconnected", slog.String("remote", c.conn.RemoteAddr().String()))
	}
}

func (p *WebSocketPort) markReady(name, version string) {
	p.readyOnce.Do(func() {
		p.mu.Lock()
		if name != "" {
			p.viewport.Name = name
		}
		p.viewport.Version = version
		p.mu.Unlock()

		p.logger.Info("viewer ready", slog.String("name", name), slog.String("version", version))
		close(p.ready)
	})
}

func (p *WebSocketPort) Configure(v View) error {
	data, err := json.Marshal(Message{Type: MessageView, View: &v})
	if err != nil {
		return fmt.Errorf("encoding view: %w", err)
	}

	p.mu.Lock()
	p.view = &v
	p.mu.Unlock()

	_, err = p.broadcast(data)
	return err
}

func (p *WebSocketPort) ApplyPose(cp pose.CameraPose) error {
	data, err := json.Marshal(Message{
		Type: MessagePose,
		Seq:  p.seq.Add(1),
		Pose: &PoseMessage{
			X:        cp.Center.X,
			Y:        cp.Center.Y,
			Z:        cp.Center.Z,
			Distance: cp.Distance,
			Pitch:    cp.Pitch,
			Yaw:      cp.Yaw,
		},
	})
	if err != nil {
		return fmt.Errorf("encoding pose: %w", err)
	}

	n, err := p.broadcast(data)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoViewer
	}
	return nil
}

// broadcast queues data for every viewer and returns how many accepted it.
// A viewer whose queue is full misses the message.
func (p *WebSocketPort) broadcast(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrClosed
	}

	var n int
	for c := range p.clients {
		select {
		case c.send <- data:
			n++
		default:
			p.dropped.Add(1)
		}
	}
	return n, nil
}

func (p *WebSocketPort) Viewport() Viewport {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.viewport
}

func (p *WebSocketPort) Ready() <-chan struct{} {
	return p.ready
}

// Dropped returns the number of messages that were not queued because a
// viewer was too slow.
func (p *WebSocketPort) Dropped() uint64 {
	return p.dropped.Load()
}

// Close disconnects all viewers. It is safe to call more than once.
func (p *WebSocketPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for c := range p.clients {
		delete(p.clients, c)
		close(c.send)
	}
	return nil
}

type wsClient struct {
	port *WebSocketPort
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) readPump() {
	defer func() {
		c.port.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.port.logger.Warn("viewer connection lost", slog.Any("error", err))
			}
			return
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			c.port.logger.Debug("ignoring malformed viewer message", slog.Any("error", err))
			continue
		}
		if msg.Type == MessageReady {
			c.port.markReady(msg.Name, msg.Version)
		}
	}
}

// writePump is the only goroutine writing to the connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
