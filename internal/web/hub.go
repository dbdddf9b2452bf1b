package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"textrpg/server/internal/config"
	"textrpg/server/internal/metrics"
	"textrpg/server/internal/session"
)

// Client represents a WebSocket client connection
type Client struct {
	ID     string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *StateHub
	mu     sync.Mutex
	closed bool
}

// Message is the envelope pushed to websocket clients
type Message struct {
	Type string            `json:"type"` // snapshot | notice | error
	Seq  uint64            `json:"seq"`
	Time int64             `json:"time"`
	Data *session.Snapshot `json:"data,omitempty"`
	Text string            `json:"text,omitempty"`
}

// directMessage is addressed to a single client
type directMessage struct {
	client *Client
	data   []byte
}

// CommandFunc runs a command sent by a client. A non-nil reply is sent
// back to that client only.
type CommandFunc func(cmd ParsedCommand) *Message

// StateHub manages WebSocket connections and pushes game snapshots
type StateHub struct {
	clients    map[string]*Client
	stopped    bool
	unregister chan *Client
	done       chan struct{}
	broadcast  chan session.Snapshot
	direct     chan directMessage
	mu         sync.RWMutex

	seq      *atomic.Uint64
	count    *atomic.Int64
	cfg      config.HubConfig
	parser   *CommandParser
	commands CommandFunc
	logger   *zap.Logger
}

// NewStateHub creates a new state hub
func NewStateHub(cfg config.HubConfig, logger *zap.Logger) *StateHub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 16
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.PongWait <= cfg.PingInterval {
		cfg.PongWait = 2 * cfg.PingInterval
	}
	return &StateHub{
		clients:    make(map[string]*Client),
		unregister: make(chan *Client, 100),
		done:       make(chan struct{}),
		broadcast:  make(chan session.Snapshot, 100),
		direct:     make(chan directMessage, 100),
		seq:        atomic.NewUint64(0),
		count:      atomic.NewInt64(0),
		cfg:        cfg,
		parser:     NewCommandParser(),
		logger:     logger.With(zap.String("component", "hub")),
	}
}

// Run starts the hub's event loop and closes every client when ctx ends
func (h *StateHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.unregister:
			h.unregisterClient(client)

		case snap := <-h.broadcast:
			h.broadcastSnapshot(snap)

		case dm := <-h.direct:
			h.sendTo(dm)
		}
	}
}

// Publish queues a snapshot for every connected client
func (h *StateHub) Publish(snap session.Snapshot) {
	select {
	case h.broadcast <- snap:
	default:
		h.logger.Warn("Broadcast channel full, dropping snapshot", zap.Uint64("revision", snap.Revision))
	}
}

// HandleCommands installs the command handler; call it before serving clients
func (h *StateHub) HandleCommands(fn CommandFunc) {
	h.commands = fn
}

// ClientCount returns the number of connected clients
func (h *StateHub) ClientCount() int {
	return int(h.count.Load())
}

// ServeWS upgrades the request and starts streaming snapshots, beginning with initial
func (h *StateHub) ServeWS(w http.ResponseWriter, r *http.Request, initial session.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, h.cfg.SendBuffer),
		Hub:  h,
	}
	if data, err := h.encode(Message{Type: "snapshot", Data: &initial}); err == nil {
		client.Send <- data
	}

	// registered before readPump starts so its unregister always comes later
	if !h.registerClient(client) {
		client.Close()
		return
	}
	go client.readPump()
}

func (h *StateHub) encode(msg Message) ([]byte, error) {
	msg.Seq = h.seq.Inc()
	msg.Time = time.Now().Unix()
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal snapshot", zap.Error(err))
		return nil, err
	}
	return data, nil
}

// registerClient adds a new client to the hub; it fails once Run has stopped
func (h *StateHub) registerClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return false
	}

	h.clients[client.ID] = client
	total := h.count.Inc()
	metrics.WSClients.Set(float64(total))
	h.logger.Info("Client connected", zap.String("client", client.ID), zap.Int64("total", total))

	go client.writePump()
	return true
}

// unregisterClient removes a client from the hub
func (h *StateHub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
		total := h.count.Dec()
		metrics.WSClients.Set(float64(total))
		h.logger.Info("Client disconnected", zap.String("client", client.ID), zap.Int64("total", total))
	}
}

func (h *StateHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.Send)
	}
	h.count.Store(0)
	metrics.WSClients.Set(0)
}

// broadcastSnapshot sends a snapshot to all connected clients
func (h *StateHub) broadcastSnapshot(snap session.Snapshot) {
	data, err := h.encode(Message{Type: "snapshot", Data: &snap})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, client := range h.clients {
		select {
		case client.Send <- data:
			sent++
		default:
			// slow client, skip this snapshot
			h.logger.Warn("Client send buffer full", zap.String("client", client.ID))
		}
	}
	h.logger.Debug("Snapshot broadcast", zap.Uint64("revision", snap.Revision), zap.Int("clients", sent))
}

// sendTo delivers a direct message if the client is still registered
func (h *StateHub) sendTo(dm directMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.clients[dm.client.ID] != dm.client {
		return
	}
	select {
	case dm.client.Send <- dm.data:
	default:
		h.logger.Warn("Client send buffer full", zap.String("client", dm.client.ID))
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(c.Hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			if !ok {
				// Hub closed the channel
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				c.mu.Unlock()
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Debug("Write failed", zap.String("client", c.ID), zap.Error(err))
				c.mu.Unlock()
				return
			}
			c.mu.Unlock()

		case <-ticker.C:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Hub.logger.Debug("Ping failed", zap.String("client", c.ID), zap.Error(err))
				c.mu.Unlock()
				return
			}
			c.mu.Unlock()
		}
	}
}

// Close closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.Conn.Close()
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Close()
	}()

	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.Hub.cfg.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(c.Hub.cfg.PongWait))
	})

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Info("Unexpected close", zap.String("client", c.ID), zap.Error(err))
			}
			break
		}
		c.handleCommand(string(payload))
	}
}

// handleCommand runs one client command; the resulting snapshot reaches
// every client through Publish
func (c *Client) handleCommand(text string) {
	cmd := c.Hub.parser.Parse(text)
	reply := &Message{Type: "error", Text: "Unknown command"}
	if cmd.Type != CommandNone && c.Hub.commands != nil {
		reply = c.Hub.commands(cmd)
	}
	if reply == nil {
		return
	}

	data, err := c.Hub.encode(*reply)
	if err != nil {
		return
	}

	select {
	case c.Hub.direct <- directMessage{client: c, data: data}:
	default:
		c.Hub.logger.Warn("Direct channel full, dropping reply", zap.String("client", c.ID))
	}
}
