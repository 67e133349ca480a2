// Package gateway pushes live trading state to dashboard clients over
// WebSocket. Events arrive on the in-process bus; the hub keeps the
// latest value per stream so a fresh client gets current state without
// waiting for the next event, and a replay buffer per stream so a
// reconnecting client can backfill what it missed.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/InfinixInfotech/Trading-App/internal/bus"
	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// ReplayCap is how many envelopes each stream's replay buffer holds.
const ReplayCap = 500

// Hub manages WebSocket clients and fans bus events out to them.
type Hub struct {
	events *bus.Bus

	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string]latestEntry
	seq     int64

	// Per-stream monotonic sequence numbers for gap detection.
	streamSeqs map[string]int64
	replayBufs map[string]*ReplayBuffer

	// OnClientCount is called with the new client count after every
	// connect and disconnect.
	OnClientCount func(int)
}

type latestEntry struct {
	Data json.RawMessage
	TS   time.Time
	Seq  int64
}

// NewHub creates a Hub fed by the given bus.
func NewHub(events *bus.Bus) *Hub {
	return &Hub{
		events:     events,
		clients:    make(map[*Client]bool),
		latest:     make(map[string]latestEntry),
		streamSeqs: make(map[string]int64),
		replayBufs: make(map[string]*ReplayBuffer),
	}
}

// Run consumes bus events and broadcasts them. Blocks until ctx is
// cancelled or the bus closes.
func (h *Hub) Run(ctx context.Context) {
	sub := h.events.Subscribe()
	defer h.events.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(ev.Data)
			if err != nil {
				log.Printf("[gateway] marshal %s event: %v", ev.Type, err)
				continue
			}
			h.broadcast(streamKey(ev), string(ev.Type), data)
		}
	}
}

// streamKey names the stream an event belongs to. Quotes get one
// stream per symbol so clients can filter; everything else is a
// single stream per event type.
func streamKey(ev bus.Event) string {
	if ev.Type == bus.EventQuote {
		if q, ok := ev.Data.(model.Quote); ok {
			return "quote:" + q.Symbol
		}
	}
	return string(ev.Type)
}

// HandleConn registers an upgraded connection and starts its pumps.
func (h *Hub) HandleConn(conn *websocket.Conn, lastTS string) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[gateway] ws client connected (%d total)", count)
	if h.OnClientCount != nil {
		h.OnClientCount(count)
	}

	go client.sendInitialState(lastTS)
	go client.writePump()
	go client.readPump()
}

// RemoveClient deregisters a client and closes its send channel.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	if h.OnClientCount != nil {
		h.OnClientCount(count)
	}
}

// LatestAll returns a snapshot of the newest payload per stream.
func (h *Hub) LatestAll() map[string]json.RawMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cp := make(map[string]json.RawMessage, len(h.latest))
	for k, v := range h.latest {
		cp[k] = v.Data
	}
	return cp
}

// ReplayRange returns buffered envelopes for a stream with stream_seq
// in [fromSeq, toSeq]. Used by the missed-messages REST endpoint.
func (h *Hub) ReplayRange(stream string, fromSeq, toSeq int64) [][]byte {
	h.mu.RLock()
	rb, ok := h.replayBufs[stream]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	entries := rb.Range(fromSeq, toSeq)
	result := make([][]byte, len(entries))
	for i, e := range entries {
		result[i] = e.Data
	}
	return result
}

// StreamSeq returns the current sequence number for a stream.
func (h *Hub) StreamSeq(stream string) int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.streamSeqs[stream]
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
