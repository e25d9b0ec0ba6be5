package realtime

import (
	"context"
	"sync"
	"time"

	"campus-ride/internal/shared/metrics"
)

// Change says "something in table changed, re-fetch". Key is the row id,
// or the chat id for messages.
type Change struct {
	Table string    `json:"table"`
	Key   string    `json:"key"`
	At    time.Time `json:"at"`
}

// Topic is a table name, optionally narrowed to a single key.
func Topic(table, key string) string {
	if key == "" {
		return table
	}
	return table + ":" + key
}

const bufferSize = 16

type Subscription struct {
	C <-chan Change

	hub    *Hub
	id     uint64
	topics []string
	ch     chan Change
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub fans change signals out to in-process subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]*Subscription
	now    func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[uint64]*Subscription),
		now:  time.Now,
	}
}

// Subscribe registers interest in one or more topics.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan Change, bufferSize)
	sub := &Subscription{C: ch, hub: h, id: h.nextID, topics: topics, ch: ch}

	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = make(map[uint64]*Subscription)
		}
		h.subs[t][sub.id] = sub
	}
	metrics.RealtimeSubscribers.Inc()
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := false
	for _, t := range sub.topics {
		if _, ok := h.subs[t][sub.id]; !ok {
			continue
		}
		removed = true
		delete(h.subs[t], sub.id)
		if len(h.subs[t]) == 0 {
			delete(h.subs, t)
		}
	}
	if removed {
		close(sub.ch)
		metrics.RealtimeSubscribers.Dec()
	}
}

// Publish delivers c to subscribers of its table and of its table:key topic.
// A subscriber with a full buffer misses the signal.
func (h *Hub) Publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uint64]bool)
	for _, t := range []string{Topic(c.Table, ""), Topic(c.Table, c.Key)} {
		for id, sub := range h.subs[t] {
			if seen[id] {
				continue
			}
			seen[id] = true
			select {
			case sub.ch <- c:
			default:
			}
		}
	}
}

// Notify publishes directly, for deployments without a broker.
func (h *Hub) Notify(_ context.Context, table, key string) error {
	h.Publish(Change{Table: table, Key: key, At: h.now().UTC()})
	return nil
}

// Subscribers returns the number of open subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
