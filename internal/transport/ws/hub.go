package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chronoforge/internal/engine"
)

const (
	writeTimeout     = 5 * time.Second
	defaultQueueSize = 64
)

// Hub fans committed engine events out to websocket subscribers. It implements
// engine.EventSink. A subscriber whose queue fills up is disconnected.
type Hub struct {
	log       *zap.Logger
	queueSize int

	upgrader websocket.Upgrader

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
	closed bool
	wg     sync.WaitGroup
}

type subscriber struct {
	out chan []byte
	// token limits delivery to events about one token when set.
	token *int64
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		log:       logger,
		queueSize: defaultQueueSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		subs: map[uint64]*subscriber{},
	}
}

// Publish encodes ev once and queues it for every matching subscriber.
func (h *Hub) Publish(_ context.Context, ev engine.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		if sub.token != nil && (ev.TokenID == nil || *ev.TokenID != *sub.token) {
			continue
		}
		select {
		case sub.out <- b:
		default:
			h.log.Warn("dropping slow event subscriber", zap.Uint64("subscriber", id))
			close(sub.out)
			delete(h.subs, id)
		}
	}
	return nil
}

// Subscribers reports the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe(token *int64) (uint64, <-chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, nil, false
	}
	h.nextID++
	sub := &subscriber{out: make(chan []byte, h.queueSize), token: token}
	h.subs[h.nextID] = sub
	h.wg.Add(1)
	return h.nextID, sub.out, true
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		close(sub.out)
		delete(h.subs, id)
	}
}

// Close disconnects every subscriber and waits for their handlers to return.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for id, sub := range h.subs {
		close(sub.out)
		delete(h.subs, id)
	}
	h.mu.Unlock()
	h.wg.Wait()
}

// Handler upgrades to a websocket and streams events as JSON text frames.
// ?token=<id> restricts the stream to one token.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var token *int64
		if q := r.URL.Query().Get("token"); q != "" {
			id, err := strconv.ParseInt(q, 10, 64)
			if err != nil || id < 0 {
				http.Error(rw, "bad token filter", http.StatusBadRequest)
				return
			}
			token = &id
		}

		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out, ok := h.subscribe(token)
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			return
		}
		defer h.wg.Done()
		defer h.unsubscribe(id)
		h.log.Debug("event subscriber connected", zap.Uint64("subscriber", id), zap.String("remote", r.RemoteAddr))

		// Reader goroutine: only control frames and close are expected.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case b, ok := <-out:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"), time.Now().Add(time.Second))
					_ = conn.Close()
					<-done
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					_ = conn.Close()
					<-done
					return
				}
			}
		}
	}
}
