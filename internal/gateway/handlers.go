package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// RegisterRoutes registers the WebSocket endpoint and its companion
// REST endpoints on the provided mux.
func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[gateway] ws upgrade error: %v", err)
			return
		}
		h.HandleConn(conn, r.URL.Query().Get("last_ts"))
	})

	// Latest payload per stream, for clients that poll instead of
	// holding a socket open.
	mux.HandleFunc("/api/v1/stream/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(h.LatestAll())
	})

	// Gap backfill: /api/v1/stream/missed?stream=signal&from=3&to=9
	mux.HandleFunc("/api/v1/stream/missed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Type", "application/json")

		stream := r.URL.Query().Get("stream")
		from, err1 := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
		to, err2 := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)
		if stream == "" || err1 != nil || err2 != nil || from > to {
			http.Error(w, `{"error":"stream, from and to are required"}`, http.StatusBadRequest)
			return
		}

		envelopes := h.ReplayRange(stream, from, to)
		out := make([]json.RawMessage, len(envelopes))
		for i, e := range envelopes {
			out[i] = e
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"stream":    stream,
			"envelopes": out,
			"head_seq":  h.StreamSeq(stream),
		})
	})
}
