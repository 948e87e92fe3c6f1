package see

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

const clientQueueSize = 16

// Hub broadcasts reports to websocket clients. It implements
// io.Writer, each Write is a single report.
// New clients receive the first report (the reset) and then follow
// live reports.
type Hub struct {
	Addr string

	upgrader websocket.Upgrader
	lock     sync.RWMutex
	clients  map[*hubClient]struct{}
	initial  []byte
	latest   []byte
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a Hub serving on addr.
func NewHub(addr string) *Hub {
	return &Hub{
		Addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// Write implements io.Writer.
func (h *Hub) Write(p []byte) (int, error) {
	msg := append([]byte(nil), p...)
	h.lock.Lock()
	if h.initial == nil {
		h.initial = msg
	}
	h.latest = msg
	h.lock.Unlock()

	h.lock.RLock()
	defer h.lock.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			glog.V(2).Infof("see: client %s too slow, report dropped", c.conn.RemoteAddr())
		}
	}
	return len(p), nil
}

// Handler returns the HTTP handler: /ws streams reports, /state
// returns the latest one.
func (h *Hub) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", h.serveWS)
	r.Get("/state", h.serveState)
	return r
}

// Run implements Runnable.
func (h *Hub) Run(ctx context.Context) error {
	srv := &http.Server{Addr: h.Addr, Handler: h.Handler()}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	glog.Infof("see: listening on %s", h.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("see: upgrade: %v", err)
		return
	}
	c := &hubClient{conn: conn, send: make(chan []byte, clientQueueSize)}
	h.lock.Lock()
	if h.initial != nil {
		c.send <- h.initial
	}
	h.clients[c] = struct{}{}
	h.lock.Unlock()

	go h.readUntilClosed(c)
	for msg := range c.send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	conn.Close()
}

// readUntilClosed drains incoming frames, and removes the client when
// the connection is gone.
func (h *Hub) readUntilClosed(c *hubClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	h.lock.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.lock.Unlock()
}

func (h *Hub) serveState(w http.ResponseWriter, r *http.Request) {
	h.lock.RLock()
	latest := h.latest
	h.lock.RUnlock()
	if latest == nil {
		render.NoContent(w, r)
		return
	}
	render.JSON(w, r, json.RawMessage(latest))
}
