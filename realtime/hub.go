// Package realtime fans orchestrator output out to long-lived
// websocket streams, one per client role. Every connection gets a full
// state snapshot before any other message, then ordered deltas.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	orchestration "github.com/hanagata/kioskd/core"
)

const maxInboundMessageBytes = 4096

// InboundHandler receives deduplicated frames sent by clients.
type InboundHandler func(role Role, msg Inbound)

type Hub struct {
	mu      sync.Mutex
	clients map[Role]map[*client]bool

	// lastSnapshot is replayed to every newly attached connection.
	lastSnapshot json.RawMessage

	onInbound InboundHandler

	upgrader websocket.Upgrader

	pingPeriod time.Duration
	pongWait   time.Duration
}

type HubOption func(*Hub)

// WithKeepAlive overrides how often ping/keepalive frames are sent and how
// long a connection may stay silent before it is dropped. The interval must
// stay below the grace period or pongs arrive too late to matter.
func WithKeepAlive(interval, grace time.Duration) HubOption {
	return func(h *Hub) {
		if interval > 0 {
			h.pingPeriod = interval
		}
		if grace > 0 {
			h.pongWait = grace
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: map[Role]map[*client]bool{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		pingPeriod: defaultPingPeriod,
		pongWait:   defaultPongWait,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleInbound registers the handler for client-sent frames. It must
// be called before the first connection attaches.
func (h *Hub) HandleInbound(handler InboundHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onInbound = handler
}

// Attach upgrades the request and joins the connection to the role's
// stream. The first message on the new connection is always a
// snapshot.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, role Role) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		hub:  h,
		role: role,
		conn: conn,
		send: make(chan Envelope, sendBufferSize),
	}

	h.mu.Lock()
	if h.clients[role] == nil {
		h.clients[role] = map[*client]bool{}
	}
	h.clients[role][c] = true
	// Queued under the lock so no broadcast can slip in ahead of it.
	c.send <- Envelope{Type: TypeSnapshot, Data: h.lastSnapshot}
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()

	logger.Debug("Client attached", "role", string(role))
	return nil
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if clients, ok := h.clients[c.role]; ok {
		if clients[c] {
			delete(clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) dispatchInbound(role Role, msg Inbound) {
	h.mu.Lock()
	handler := h.onInbound
	h.mu.Unlock()
	if handler != nil {
		handler(role, msg)
	}
}

// broadcast queues an envelope on every connection of one role. A
// client whose buffer is full is treated as dead and detached.
func (h *Hub) broadcast(role Role, msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to marshal broadcast payload", "type", msgType, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[role] {
		select {
		case c.send <- Envelope{Type: msgType, Data: raw}:
		default:
			h.removeLocked(c)
		}
	}
}

type exchangeView struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

type snapshotView struct {
	Phase               string         `json:"phase"`
	SpeakingUtteranceID string         `json:"speaking_utterance_id,omitempty"`
	Session             []exchangeView `json:"session"`
}

// Snapshot publishes the current state to every role and records it
// for replay to future connections.
func (h *Hub) Snapshot(state orchestration.State) {
	view := snapshotView{
		Phase:               string(state.Phase),
		SpeakingUtteranceID: state.SpeakingUtteranceID,
		Session:             make([]exchangeView, 0, len(state.Session)),
	}
	for _, exchange := range state.Session {
		view.Session = append(view.Session, exchangeView{User: exchange.User, Assistant: exchange.Assistant})
	}

	raw, err := json.Marshal(view)
	if err != nil {
		logger.Error("Failed to marshal snapshot", "error", err)
		return
	}

	h.mu.Lock()
	h.lastSnapshot = raw
	h.mu.Unlock()

	for _, role := range []Role{RoleDisplay, RoleOperator} {
		h.broadcast(role, TypeSnapshot, view)
	}
}

type expressionView struct {
	Name string `json:"name"`
}

type motionView struct {
	Name       string `json:"name"`
	InstanceID string `json:"instance_id"`
}

func (h *Hub) SetExpression(name string) {
	h.broadcast(RoleDisplay, TypeExpression, expressionView{Name: name})
}

func (h *Hub) PlayMotion(name, instanceID string) {
	h.broadcast(RoleDisplay, TypeMotion, motionView{Name: name, InstanceID: instanceID})
}

// PlaySegment forwards one synthesized segment to the display stream.
func (h *Hub) PlaySegment(segment orchestration.PlaybackSegment) {
	h.broadcast(RoleDisplay, TypeSpeak, segment)
}

// NotifyStop tells the display to cut any in-progress playback.
func (h *Hub) NotifyStop() {
	h.broadcast(RoleDisplay, TypeStopOutput, struct{}{})
}
