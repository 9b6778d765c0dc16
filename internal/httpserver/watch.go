// apps/go-server/internal/httpserver/watch.go
//
// Live round-state feed over WebSocket.
// A client opens GET /round/watch?roundId=... and receives the round
// snapshot immediately, then again after every mutation (recall, peek,
// select, reset). One round can have any number of watchers; a spectating
// second screen or a devtools client are the expected consumers.

package httpserver

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pathmem/apps/go-server/internal/game"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// watchConn serializes writes to one websocket connection. gorilla allows
// only a single concurrent writer, and a registered conn can be written by
// both its handler (initial snapshot) and any broadcasting mutation.
type watchConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *watchConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// watchHub fans round snapshots out to the connections watching each round.
type watchHub struct {
	mu   sync.Mutex
	subs map[string]map[*watchConn]struct{} // keyed by round ID
}

func newWatchHub() *watchHub {
	return &watchHub{subs: make(map[string]map[*watchConn]struct{})}
}

// add registers a connection as a watcher of roundID.
func (h *watchHub) add(roundID string, conn *websocket.Conn) *watchConn {
	wc := &watchConn{conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[roundID] == nil {
		h.subs[roundID] = make(map[*watchConn]struct{})
	}
	h.subs[roundID][wc] = struct{}{}
	return wc
}

// remove detaches a connection; the round entry is dropped when empty.
func (h *watchHub) remove(roundID string, wc *watchConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[roundID]; ok {
		delete(set, wc)
		if len(set) == 0 {
			delete(h.subs, roundID)
		}
	}
}

// broadcast pushes a snapshot to every watcher of roundID.
// Dead connections are closed and dropped as writes fail.
func (h *watchHub) broadcast(roundID string, snap game.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for wc := range h.subs[roundID] {
		if err := wc.writeJSON(snap); err != nil {
			_ = wc.conn.Close()
			delete(h.subs[roundID], wc)
		}
	}
	if len(h.subs[roundID]) == 0 {
		delete(h.subs, roundID)
	}
}

// handleWatch upgrades the connection and streams round snapshots until
// the client goes away.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	roundID := r.URL.Query().Get("roundId")
	if roundID == "" {
		http.Error(w, `{"error":"missing roundId"}`, http.StatusBadRequest)
		return
	}
	g, err := s.store.Get(r.Context(), roundID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("watch upgrade")
		return
	}
	wc := s.hub.add(roundID, conn)
	defer func() {
		s.hub.remove(roundID, wc)
		_ = conn.Close()
	}()

	// Initial state so the watcher does not wait for the next mutation.
	if err := wc.writeJSON(s.snapshot(g)); err != nil {
		return
	}

	// Read loop only to detect the close; watchers never send data.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
