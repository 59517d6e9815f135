package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	gometrics "github.com/rcrowley/go-metrics"
)

func testConfig() *config {
	return &config{
		Host:           "127.0.0.1",
		Port:           8000,
		AllowedOrigins: []string{"*"},
		LogLevel:       "debug",
		LogFormat:      "text",
		MaxMessageSize: 4096,
		SendBuffer:     16,
		PingPeriod:     27 * time.Second,
		StopTimeout:    time.Second,
		KillTimeout:    time.Second,
	}
}

// newTestHub returns a hub on a fake clock whose log records are captured.
func newTestHub(t *testing.T) (*hub, *recordingHandler, *clockwork.FakeClock) {
	t.Helper()
	rec := &recordingHandler{}
	clock := clockwork.NewFakeClock()
	m := newMetrics(gometrics.NewRegistry(), nil, 0)
	h := newHub(testConfig(), slog.New(rec), m, clock)
	t.Cleanup(h.shutdown)
	return h, rec, clock
}

// recordingHandler keeps every record it is handed.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (r *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (r *recordingHandler) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec.Clone())
	return nil
}

func (r *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return r }

func (r *recordingHandler) WithGroup(string) slog.Handler { return r }

func (r *recordingHandler) count(level slog.Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.Level == level {
			n++
		}
	}
	return n
}

func (r *recordingHandler) messages(level slog.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var msgs []string
	for _, rec := range r.records {
		if rec.Level == level {
			msgs = append(msgs, rec.Message)
		}
	}
	return msgs
}

// fakeChannel is an outbound that records payloads and can be made to fail.
type fakeChannel struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
	closed   bool
	onSend   func()
}

func (f *fakeChannel) send(payload []byte) error {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeChannel) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeChannel) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.payloads...)
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

var errMockClosed = errors.New("mock websocket closed")

type written struct {
	messageType int
	payload     []byte
}

// mockWsInteractor stands in for a websocket. Frames pushed on reads are
// returned by wsReadMessage; closing reads simulates the peer going away.
type mockWsInteractor struct {
	reads    chan []byte
	wrote    chan written
	writeErr error

	closeOnce sync.Once
	done      chan struct{}
	readLimit int64
}

func newMockWs() *mockWsInteractor {
	return &mockWsInteractor{
		reads: make(chan []byte, 16),
		wrote: make(chan written, 64),
		done:  make(chan struct{}),
	}
}

func (mq *mockWsInteractor) wsSetReadLimit(limit int64) { mq.readLimit = limit }

func (mq *mockWsInteractor) wsSetReadDeadline() {}

func (mq *mockWsInteractor) wsSetPongHandler() {}

func (mq *mockWsInteractor) wsSetWriteDeadline() {}

func (mq *mockWsInteractor) wsClose() {
	mq.closeOnce.Do(func() { close(mq.done) })
}

func (mq *mockWsInteractor) wsReadMessage() (messageType int, p []byte, err error) {
	select {
	case msg, ok := <-mq.reads:
		if !ok {
			return 0, nil, errMockClosed
		}
		return 1, msg, nil
	case <-mq.done:
		return 0, nil, errMockClosed
	}
}

func (mq *mockWsInteractor) wsWriteMessage(messageType int, payload []byte) error {
	if mq.writeErr != nil {
		return mq.writeErr
	}
	mq.wrote <- written{messageType: messageType, payload: payload}
	return nil
}

func (mq *mockWsInteractor) isClosed() bool {
	select {
	case <-mq.done:
		return true
	default:
		return false
	}
}
