package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/talgya/commons/internal/engine"
)

const maxStreamConns = 8

// Hub fans state snapshots out to stream subscribers. A subscriber that
// falls behind misses frames rather than stalling the tick loop.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan []byte
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []byte)}
}

func (h *Hub) Subscribe() (int, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	ch := make(chan []byte, 4)
	h.subs[h.next] = ch
	return h.next, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish sends st to every subscriber. It never blocks.
func (h *Hub) Publish(st engine.State) {
	frame, err := json.Marshal(st)
	if err != nil {
		slog.Warn("stream: encode state", "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// handleStream upgrades to a websocket and pushes the state after every tick.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "streaming disabled", http.StatusNotFound)
		return
	}

	current := atomic.AddInt32(&s.streamConns, 1)
	if current > maxStreamConns {
		atomic.AddInt32(&s.streamConns, -1)
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.streamConns, -1)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Debug("stream: accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// Inbound messages are ignored; ctx ends when the client goes away.
	ctx := conn.CloseRead(r.Context())

	id, ch := s.Hub.Subscribe()
	defer s.Hub.Unsubscribe(id)
	slog.Info("stream client connected", "sub_id", id)

	first, err := json.Marshal(s.Sim.Snapshot())
	if err != nil {
		return
	}
	if err := writeFrame(ctx, conn, first); err != nil {
		return
	}

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case frame, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server closing")
				return
			}
			if err := writeFrame(ctx, conn, frame); err != nil {
				return
			}
		case <-heartbeat.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			slog.Info("stream client disconnected", "sub_id", id)
			return
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, frame []byte) error {
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := conn.Write(wctx, websocket.MessageText, frame)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Debug("stream: write failed", "error", err)
	}
	return err
}
