package websocket

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/electionview/internal/errors"
	"github.com/abrezinsky/electionview/internal/logger"
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/render"
	"github.com/abrezinsky/electionview/internal/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// Renderer renders the fragments sent to clients
type Renderer interface {
	Panel(p *services.Panel) (string, error)
	YearOptions(options []int, selected int) (string, error)
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	views      services.ViewServicer
	renderer   Renderer
}

// Client is a middleman between the websocket connection and the hub.
// Its session is owned by readPump, so actions of one client run one at a time.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan models.WSMessage
	session *services.Session
	stale   atomic.Bool
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, views services.ViewServicer, renderer Renderer) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		views:      views,
		renderer:   renderer,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)

			// Send the current catalog to the new client
			client.trySend(h.catalogMessage())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if !client.trySend(message) {
					h.log.Warn("Dropping broadcast for slow client", "type", message.Type)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- models.WSMessage{
		Type:    msgType,
		Payload: payload,
	}
}

// BroadcastCatalogChanged implements services.Broadcaster. Every session is
// cleared before its next action since its selections may name stale entries.
func (h *Hub) BroadcastCatalogChanged() {
	h.mutex.RLock()
	for client := range h.clients {
		client.stale.Store(true)
	}
	h.mutex.RUnlock()

	h.BroadcastMessage(models.MsgCatalogChanged, h.catalogMessage().Payload)
}

func (h *Hub) catalogMessage() models.WSMessage {
	return models.WSMessage{
		Type: models.MsgCatalog,
		Payload: map[string]interface{}{
			"countries": h.views.Catalog().Countries(),
		},
	}
}

// trySend queues message without blocking. It reports false when the queue is full.
func (c *Client) trySend(message models.WSMessage) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type countryPayload struct {
	Tab   models.Tab `json:"tab"`
	Value string     `json:"value"`
}

type yearPayload struct {
	Tab   models.Tab `json:"tab"`
	Slot  int        `json:"slot"`
	Value int        `json:"value"`
}

type countPayload struct {
	Value int `json:"value"`
}

type tabPayload struct {
	Tab models.Tab `json:"tab"`
}

// readPump pumps messages from the websocket connection to the client's session
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Debug("Ignoring undecodable message", "error", err)
			continue
		}
		c.hub.log.Debug("Received message", "type", msg.Type)

		if c.stale.Swap(false) {
			c.session.Reset()
		}
		c.handle(ctx, msg)
	}
}

// handle applies one client message to the session and queues the replies
func (c *Client) handle(ctx context.Context, msg inboundMessage) {
	switch msg.Type {
	case models.MsgSelectCountry:
		var p countryPayload
		if !c.decode(msg, &p) {
			return
		}
		if err := c.session.SelectCountry(p.Tab, p.Value); err != nil {
			c.hub.log.Debug("Ignoring country selection", "tab", p.Tab, "error", err)
			return
		}
		sel := c.session.Selector(p.Tab)
		for slot := 0; slot < sel.Children(); slot++ {
			c.renderYearSelect(p.Tab, slot)
		}

	case models.MsgSelectYear:
		var p yearPayload
		if !c.decode(msg, &p) {
			return
		}
		accepted, err := c.session.SelectYear(p.Tab, p.Slot, p.Value)
		if err != nil || p.Slot < 0 || p.Slot >= c.session.Selector(p.Tab).Children() {
			c.hub.log.Debug("Ignoring year selection", "tab", p.Tab, "slot", p.Slot)
			return
		}
		if !accepted {
			c.hub.log.Debug("Year selection ignored", "tab", p.Tab, "slot", p.Slot, "year", p.Value)
		}
		// Echo the slot so the page shows what the session holds
		c.renderYearSelect(p.Tab, p.Slot)

	case models.MsgSetCount:
		var p countPayload
		if !c.decode(msg, &p) {
			return
		}
		if err := c.session.SetCount(p.Value); err != nil {
			c.reply(models.MsgValidation, map[string]string{"message": userMessage(err)})
		}

	case models.MsgActivateTab:
		var p tabPayload
		if !c.decode(msg, &p) {
			return
		}
		if err := c.session.Activate(p.Tab); err != nil {
			c.hub.log.Debug("Ignoring tab activation", "tab", p.Tab)
		}

	case models.MsgAnalyze:
		var p tabPayload
		if !c.decode(msg, &p) {
			return
		}
		c.analyze(ctx, p.Tab)

	default:
		c.hub.log.Debug("Unknown message type", "type", msg.Type)
	}
}

func (c *Client) analyze(ctx context.Context, tab models.Tab) {
	panel, err := c.session.Analyze(ctx, tab)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrUnknownTab):
			c.hub.log.Debug("Ignoring analysis of unknown tab", "tab", tab)
		case errors.Is(err, errors.ErrValidation):
			c.reply(models.MsgValidation, map[string]string{"tab": string(tab), "message": userMessage(err)})
		default:
			c.reply(models.MsgError, map[string]string{"tab": string(tab), "message": services.FailureMessage(tab)})
		}
		return
	}

	html, err := c.hub.renderer.Panel(panel)
	if err != nil {
		c.hub.log.Error("Failed to render panel", "tab", tab, "error", err)
		c.reply(models.MsgError, map[string]string{"tab": string(tab), "message": services.FailureMessage(tab)})
		return
	}
	c.reply(models.MsgRender, map[string]string{"target": render.PanelTarget(tab), "html": html})
}

func (c *Client) renderYearSelect(tab models.Tab, slot int) {
	sel := c.session.Selector(tab)
	html, err := c.hub.renderer.YearOptions(sel.ChildOptions(slot), sel.Child(slot))
	if err != nil {
		c.hub.log.Error("Failed to render year options", "tab", tab, "slot", slot, "error", err)
		return
	}
	c.reply(models.MsgRender, map[string]string{"target": render.YearSelectTarget(tab, slot), "html": html})
}

func (c *Client) decode(msg inboundMessage, v interface{}) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.hub.log.Debug("Invalid message payload", "type", msg.Type, "error", err)
		return false
	}
	return true
}

func (c *Client) reply(msgType string, payload interface{}) {
	if !c.trySend(models.WSMessage{Type: msgType, Payload: payload}) {
		c.hub.log.Warn("Dropping reply for slow client", "type", msgType)
	}
}

// userMessage returns the message of an application error without its cause
func userMessage(err error) string {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan models.WSMessage, 256),
		session: services.NewSession(h.views),
	}
	h.register <- client

	ctx, cancel := context.WithCancel(context.Background())

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go func() {
		defer cancel()
		client.readPump(ctx)
	}()
}
