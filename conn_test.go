package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnection(h *hub, id string) (*connection, *mockWsInteractor) {
	ws := newMockWs()
	return newConnection(ws, h, id), ws
}

func nextWrite(t *testing.T, ws *mockWsInteractor) written {
	t.Helper()
	select {
	case w := <-ws.wrote:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("nothing written to websocket")
	}
	return written{}
}

func nextOut(t *testing.T, c *connection) frame {
	t.Helper()
	select {
	case raw := <-c.out:
		var f frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("nothing queued for connection")
	}
	return frame{}
}

func TestConnSendAndClose(t *testing.T) {
	h, _, _ := newTestHub(t)
	c, _ := newTestConnection(h, "a")

	require.NoError(t, c.send([]byte("banana")))
	assert.Equal(t, "banana", string(<-c.out))

	c.close()
	assert.ErrorIs(t, c.send([]byte("banana")), errConnClosed)
	assert.NotPanics(t, c.close)
}

func TestConnSendBufferFull(t *testing.T) {
	h, _, _ := newTestHub(t)
	c, _ := newTestConnection(h, "a")

	for i := 0; i < h.cfg.SendBuffer; i++ {
		require.NoError(t, c.send([]byte("x")))
	}
	assert.ErrorIs(t, c.send([]byte("x")), errSendBufferFull)
	assert.ErrorIs(t, c.send([]byte("x")), errConnClosed)
}

func TestConnReadMessage(t *testing.T) {
	h, rec, _ := newTestHub(t)
	c, ws := newTestConnection(h, "a")
	require.NoError(t, h.connect(c))
	assert.Equal(t, eventConnect, nextOut(t, c).Event)

	// On error, nothing is dispatched
	ws.wsClose()
	require.Error(t, c.readMessage())
	assert.Len(t, c.out, 0)

	// A sendMessage event comes back to the sender as a message event
	ws = newMockWs()
	c.w = ws
	ws.reads <- []byte(`{"event":"sendMessage","data":` + hiPayload + `}`)
	require.NoError(t, c.readMessage())
	f := nextOut(t, c)
	assert.Equal(t, eventMessage, f.Event)
	assert.JSONEq(t, hiPayload, string(f.Data))
	assert.Equal(t, int64(1), h.m.count("conn.recv"))

	// A malformed event is dropped and logged once
	ws.reads <- []byte(`{"event":"sendMessage","data":{"receiverId":"B"}}`)
	require.NoError(t, c.readMessage())
	assert.Len(t, c.out, 0)
	assert.Equal(t, 1, rec.count(slog.LevelError))
}

func TestConnWriter(t *testing.T) {
	h, _, clock := newTestHub(t)
	c, ws := newTestConnection(h, "a")

	go c.writer(h.ticker.subscribe())

	// Queued messages are written as text frames
	require.NoError(t, c.send([]byte("bananas")))
	w := nextWrite(t, ws)
	assert.Equal(t, websocket.TextMessage, w.messageType)
	assert.Equal(t, "bananas", string(w.payload))
	require.Eventually(t, func() bool { return h.m.count("conn.send") == 1 }, time.Second, time.Millisecond)

	// On timed intervals, ping with nil message
	waitForTicker(t, clock)
	clock.Advance(h.cfg.PingPeriod)
	w = nextWrite(t, ws)
	assert.Equal(t, websocket.PingMessage, w.messageType)
	assert.Empty(t, w.payload)

	// Closing the connection sends a close frame and closes the socket
	c.close()
	w = nextWrite(t, ws)
	assert.Equal(t, websocket.CloseMessage, w.messageType)
	require.Eventually(t, ws.isClosed, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return h.ticker.len() == 0 }, time.Second, time.Millisecond)
}

func TestConnWriterStopsOnWriteError(t *testing.T) {
	h, _, _ := newTestHub(t)
	c, ws := newTestConnection(h, "a")
	ws.writeErr = errors.New("broken pipe")

	done := make(chan struct{})
	go func() {
		c.writer(h.ticker.subscribe())
		close(done)
	}()
	require.NoError(t, c.send([]byte("bananas")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not stop")
	}
	assert.True(t, ws.isClosed())
}

func TestConnRunLifecycle(t *testing.T) {
	h, _, _ := newTestHub(t)
	c, ws := newTestConnection(h, "a")

	done := make(chan struct{})
	go func() {
		c.run()
		close(done)
	}()

	// The greeting carries the session id.
	w := nextWrite(t, ws)
	var f frame
	require.NoError(t, json.Unmarshal(w.payload, &f))
	assert.Equal(t, eventConnect, f.Event)
	assert.JSONEq(t, `{"sid":"a"}`, string(f.Data))
	assert.True(t, h.reg.has("a"))

	// Peer goes away
	close(ws.reads)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return")
	}
	assert.Equal(t, h.cfg.MaxMessageSize, ws.readLimit)
	assert.False(t, h.reg.has("a"))
	assert.Equal(t, 0, h.reg.len())
	assert.ErrorIs(t, c.send([]byte("x")), errConnClosed)
}

func TestConnRunDuplicateID(t *testing.T) {
	h, rec, _ := newTestHub(t)
	first, _ := newTestConnection(h, "a")
	require.NoError(t, h.connect(first))

	second, ws := newTestConnection(h, "a")
	second.run()

	assert.True(t, ws.isClosed())
	assert.Equal(t, 1, h.reg.len())
	assert.Contains(t, rec.messages(slog.LevelError), "rejecting connection")
}
