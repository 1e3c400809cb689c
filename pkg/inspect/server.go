package inspect

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// streamMessage wraps everything sent over /ws.
type streamMessage struct {
	Type  string       `json:"type"` // "hello" or "flush"
	Stats *Stats       `json:"stats,omitempty"`
	Flush *FlushRecord `json:"flush,omitempty"`
}

// Handler returns the inspector's HTTP surface. Mount it wherever the
// application serves operational endpoints:
//
//	mux.Handle("/debug/fluxion/", http.StripPrefix("/debug/fluxion", ins.Handler()))
func (ins *Inspector) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", ins.handleIndex)
	r.Get("/stats", ins.handleStats)
	r.Get("/flushes", ins.handleFlushes)
	r.Get("/ws", ins.handleWebSocket)
	return r
}

func (ins *Inspector) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"service":   "fluxion-inspector",
		"endpoints": []string{"/stats", "/flushes", "/ws"},
	})
}

func (ins *Inspector) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ins.Stats())
}

func (ins *Inspector) handleFlushes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ins.RecentFlushes())
}

// handleWebSocket upgrades the connection, sends a hello snapshot, and
// keeps the connection registered until the client goes away. Inbound
// messages are ignored.
func (ins *Inspector) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ins.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := ins.hub.add(conn)
	ins.log.Debug("inspect: stream client connected", "clients", ins.hub.count())

	stats := ins.Stats()
	if err := c.send(streamMessage{Type: "hello", Stats: &stats}); err != nil {
		ins.hub.remove(c)
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	ins.hub.remove(c)
	ins.log.Debug("inspect: stream client disconnected", "clients", ins.hub.count())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// wsClient serializes writes to one connection: the fanout goroutine
// and the hello write in the handler may race otherwise.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(msg streamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// hub tracks WebSocket stream clients.
type hub struct {
	mu       sync.RWMutex
	clients  map[*wsClient]bool
	upgrader websocket.Upgrader
}

func newHub() *hub {
	return &hub{
		clients: make(map[*wsClient]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // allow all origins on the inspector surface
			},
		},
	}
}

func (h *hub) add(conn *websocket.Conn) *wsClient {
	c := &wsClient{conn: conn}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcastFlush sends one flush message to every client, dropping
// clients whose writes fail.
func (h *hub) broadcastFlush(rec FlushRecord) {
	msg := streamMessage{Type: "flush", Flush: &rec}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			h.remove(c)
		}
	}
}

// closeAll closes every client connection.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
