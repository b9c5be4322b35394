package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/zeuscore/internal/core/events/bus"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
)

const (
	// NoticeHello is the first frame every feed client receives
	NoticeHello = "monitor.hello"

	sendBuffer   = 256
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Feed streams bus notices to websocket clients as JSON text frames. New
// clients get a hello frame and then the retained history.
type Feed struct {
	mu      sync.Mutex
	clients map[string]*client
	closed  bool
	history *History
	log     log.Log
	dropped atomic.Uint64
}

func NewFeed(history *History, logger log.Log) *Feed {
	if history == nil {
		history = NewHistory(1)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{
		clients: make(map[string]*client),
		history: history,
		log:     logger,
	}
}

// Handle is the bus handler feeding the stream. It never blocks on clients;
// a client whose buffer is full is disconnected.
func (f *Feed) Handle(ev bus.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.history.Append(ev)
	for id, c := range f.clients {
		select {
		case c.send <- b:
		default:
			delete(f.clients, id)
			c.close()
			f.dropped.Add(1)
			f.log.Warn("feed client too slow, dropped", log.String("client_id", id))
		}
	}
	return nil
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Debug("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	if !f.register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "monitor closed"))
		_ = conn.Close()
		return
	}
	f.log.Debug("feed client connected", log.String("client_id", c.id), log.String("remote", r.RemoteAddr))

	go f.writeLoop(c)
	f.readLoop(c)
}

// register queues the hello frame and the history ahead of any live notice
func (f *Feed) register(c *client) bool {
	hello, _ := json.Marshal(bus.NewEvent(NoticeHello, "monitor", 0, map[string]any{"client_id": c.id}))

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	c.send <- hello
	for _, ev := range f.history.Get() {
		b, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		select {
		case c.send <- b:
		default:
		}
	}
	f.clients[c.id] = c
	return true
}

func (f *Feed) unregister(c *client) {
	f.mu.Lock()
	if f.clients[c.id] == c {
		delete(f.clients, c.id)
	}
	f.mu.Unlock()
	c.close()
}

// readLoop discards client frames; it exists to notice disconnects
func (f *Feed) readLoop(c *client) {
	defer f.unregister(c)
	c.conn.SetReadLimit(readLimit)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (f *Feed) writeLoop(c *client) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
		f.log.Debug("feed client disconnected", log.String("client_id", c.id))
	}()

	for {
		select {
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.close()
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Clients counts connected feed clients
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every client and refuses new ones
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for id, c := range f.clients {
		delete(f.clients, id)
		c.close()
	}
}
