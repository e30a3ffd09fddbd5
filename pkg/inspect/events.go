package inspect

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/loom/pkg/dom"
)

// client is one websocket subscriber. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		}
	}
}

// handleEvents upgrades the connection and streams mutation records until
// the client disconnects.
func (i *Inspector) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := i.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, i.buffer), done: make(chan struct{})}

	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		conn.Close()
		return
	}
	i.clients[c] = struct{}{}
	i.mu.Unlock()
	i.logger.Debug("inspector client connected", "remote", r.RemoteAddr)

	go c.writePump()

	// Keep the connection until the client disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	i.mu.Lock()
	delete(i.clients, c)
	i.mu.Unlock()
	c.close()
	i.logger.Debug("inspector client disconnected", "remote", r.RemoteAddr)
}

// broadcast runs on the runtime goroutine for every mutation. It never
// blocks: a client whose buffer is full misses the record.
func (i *Inspector) broadcast(rec dom.MutationRecord) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if len(i.clients) == 0 {
		return
	}

	data, err := json.Marshal(rec)
	if err != nil {
		i.logger.Warn("mutation record not encodable", "error", err)
		return
	}
	for c := range i.clients {
		select {
		case c.send <- data:
		default:
			i.logger.Debug("inspector client too slow, record dropped")
		}
	}
}
