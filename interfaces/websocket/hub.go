package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"linkscope-backend/application/queries/models"
	"linkscope-backend/domain/services"
)

// Envelope wraps every outbound websocket message with a type tag so the
// drawing layer can demultiplex frames from pivot events.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub routes render frames and pivot events to the websocket clients
// subscribed to each investigation. It implements ports.FramePublisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// register attaches a client to its investigation's broadcast set.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.investigationID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.investigationID] = set
	}
	set[c] = struct{}{}
	h.logger.Debug("Websocket client registered",
		zap.String("investigationID", c.investigationID),
		zap.Int("subscribers", len(set)),
	)
}

// unregister detaches a client and closes its send queue.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.investigationID]
	if !ok {
		return
	}
	if _, present := set[c]; !present {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.investigationID)
	}
}

// PublishFrame broadcasts a render frame to the investigation's subscribers.
func (h *Hub) PublishFrame(investigationID string, frame *models.RenderFrame) {
	h.broadcast(investigationID, Envelope{Type: "frame", Data: frame})
}

// PublishPivot broadcasts a pivot request to the investigation's subscribers.
func (h *Hub) PublishPivot(investigationID string, pivot services.PivotEvent) {
	h.broadcast(investigationID, Envelope{Type: "pivot", Data: pivot})
}

// broadcast marshals once and queues onto every subscriber. A client whose
// queue is full is dropped: it is too slow to keep up with the frame rate
// and a growing backlog would only show it a stale layout.
func (h *Hub) broadcast(investigationID string, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("Failed to marshal websocket message", zap.Error(err))
		return
	}

	h.mu.RLock()
	set := h.clients[investigationID]
	var slow []*Client
	for c := range set {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow websocket client",
			zap.String("investigationID", c.investigationID),
		)
		h.unregister(c)
	}
}

// SubscriberCount returns the number of clients watching an investigation.
func (h *Hub) SubscriberCount(investigationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[investigationID])
}
