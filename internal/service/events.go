package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/eternumwasd/api/internal/model"
)

// EventType represents the type of event
type EventType string

const (
	// Sync events
	EventSync EventType = "sync"

	// System events
	EventHeartbeat EventType = "heartbeat"
)

// HeartbeatInterval is how often idle subscribers receive a heartbeat
const HeartbeatInterval = 30 * time.Second

// Event represents a server-sent event
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + string(e.Type) + "\ndata: " + string(data) + "\n\n"
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID     string
	Events chan *Event
	Done   chan struct{}
}

// EventHub fans sync progress out to SSE subscribers
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	heartbeat   *time.Ticker
	done        chan struct{}
	closed      bool
	wg          sync.WaitGroup
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return NewEventHubWithHeartbeat(HeartbeatInterval)
}

// NewEventHubWithHeartbeat creates a hub with a custom heartbeat period
func NewEventHubWithHeartbeat(interval time.Duration) *EventHub {
	hub := &EventHub{
		subscribers: make(map[string]*Subscriber),
		heartbeat:   time.NewTicker(interval),
		done:        make(chan struct{}),
	}
	hub.wg.Add(1)
	go hub.sendHeartbeats()
	return hub
}

// Subscribe adds a new subscriber
func (h *EventHub) Subscribe(subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:     subscriberID,
		Events: make(chan *Event, 100), // Buffer to prevent blocking
		Done:   make(chan struct{}),
	}
	if h.closed {
		close(sub.Done)
		close(sub.Events)
		return sub
	}
	h.subscribers[subscriberID] = sub
	return sub
}

// Unsubscribe removes a subscriber
func (h *EventHub) Unsubscribe(subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subscribers[subscriberID]; ok {
		close(sub.Done)
		close(sub.Events)
		delete(h.subscribers, subscriberID)
	}
}

// Publish sends a sync event to every subscriber. Subscribers with a full
// buffer miss the event.
func (h *EventHub) Publish(ev model.SyncEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.broadcast(&Event{Type: EventSync, Data: ev})
}

func (h *EventHub) broadcast(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		select {
		case sub.Events <- event:
		default:
		}
	}
}

// sendHeartbeats sends periodic heartbeats to all subscribers
func (h *EventHub) sendHeartbeats() {
	defer h.wg.Done()
	for {
		select {
		case <-h.heartbeat.C:
			h.broadcast(&Event{
				Type: EventHeartbeat,
				Data: map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			})
		case <-h.done:
			return
		}
	}
}

// Close stops the heartbeat and disconnects every subscriber
func (h *EventHub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.done)
	h.heartbeat.Stop()
	for id, sub := range h.subscribers {
		close(sub.Done)
		close(sub.Events)
		delete(h.subscribers, id)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// SubscriberCount returns the number of connected subscribers
func (h *EventHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
