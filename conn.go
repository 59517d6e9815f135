package main

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

type connection struct {
	id  string
	w   websocketManager
	h   *hub
	log *slog.Logger

	mu     sync.Mutex // Protects out and closed
	out    chan []byte
	closed bool
}

func newConnection(w websocketManager, h *hub, id string) *connection {
	return &connection{
		id:  id,
		w:   w,
		h:   h,
		log: h.log.With("sid", id),
		out: make(chan []byte, h.cfg.SendBuffer),
	}
}

// run blocks until the peer goes away.
func (c *connection) run() {
	if err := c.h.connect(c); err != nil {
		c.w.wsClose()
		return
	}
	defer c.h.disconnect(c)

	go c.writer(c.h.ticker.subscribe())
	c.reader()
}

// send hands payload to the writer without blocking. A full buffer means
// the peer is not keeping up; the connection is closed and will be cleaned up
// by the normal disconnect path.
func (c *connection) send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errConnClosed
	}
	select {
	case c.out <- payload:
		return nil
	default:
		c.closed = true
		close(c.out)
		return errSendBufferFull
	}
}

func (c *connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

func (c *connection) reader() {
	c.w.wsSetReadLimit(c.h.cfg.MaxMessageSize)
	c.w.wsSetReadDeadline()
	c.w.wsSetPongHandler()
	for {
		if err := c.readMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read failed", "error", err)
			}
			break
		}
	}
	c.w.wsClose()
}

func (c *connection) readMessage() error {
	_, message, err := c.w.wsReadMessage()
	if err != nil {
		return err
	}
	c.h.m.incr("conn.recv", 1)
	c.h.dispatch(c, message)
	return nil
}

func (c *connection) writer(sub *subscriber) {
	defer func() {
		c.h.ticker.unsubscribe(sub)
		c.w.wsClose()
	}()

	ticks := sub.tick
	for {
		select {
		case message, ok := <-c.out:
			c.w.wsSetWriteDeadline()
			if !ok {
				c.w.wsWriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.w.wsWriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
			c.h.m.incr("conn.send", 1)
		case _, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			c.w.wsSetWriteDeadline()
			if err := c.w.wsWriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
