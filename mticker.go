package main

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// mTicker fans one ticker out to every connection writer, which pings its
// peer on each tick.
type mTicker struct {
	mux         sync.Mutex // Protects subscribers and closed
	subscribers subscribers
	closed      bool

	tickerMux sync.Mutex // Used to sync start/stop
	ticker    clockwork.Ticker
	stopCh    chan struct{}
	stopped   bool
	dropped   int
}

type subscribers map[*subscriber]interface {
}

type subscriber struct {
	tick chan time.Time
}

// creates and starts a new ticker
// that can have subscribed channels to receive
// ticks
func newMTicker(clock clockwork.Clock, interval time.Duration) *mTicker {
	t := &mTicker{
		subscribers: make(subscribers),
	}

	go func() {
		t.tickerMux.Lock()
		stopped := t.stopped

		if !stopped {
			t.stopCh = make(chan struct{}, 1)
			t.ticker = clock.NewTicker(interval)
		}
		t.tickerMux.Unlock()

		if !stopped {
			t.tick()
		}
	}()
	return t
}

func newSubscriber() *subscriber {
	return &subscriber{
		tick: make(chan time.Time, 1),
	}
}

// subscribe returns a channel to which ticks will be delivered. Ticks that
// can't be delivered to the channel, because it is not ready to receive, are
// discarded. After stop the returned channel is already closed.
func (t *mTicker) subscribe() *subscriber {
	t.mux.Lock()
	defer t.mux.Unlock()

	sub := newSubscriber()
	if t.closed {
		close(sub.tick)
		return sub
	}
	t.subscribers[sub] = nil
	return sub
}

func (t *mTicker) unsubscribe(sub *subscriber) {
	t.mux.Lock()
	defer t.mux.Unlock()

	if _, ok := t.subscribers[sub]; !ok {
		return
	}
	close(sub.tick)
	delete(t.subscribers, sub)
}

func (t *mTicker) len() int {
	t.mux.Lock()
	defer t.mux.Unlock()

	return len(t.subscribers)
}

// stop stops the ticker, and closes
// all subscribed channels
func (t *mTicker) stop() {
	t.tickerMux.Lock()
	defer t.tickerMux.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	if t.stopCh != nil {
		t.ticker.Stop()
		t.stopCh <- struct{}{}
	}

	t.mux.Lock()
	t.closed = true
	for sub := range t.subscribers {
		close(sub.tick)
	}
	t.subscribers = make(subscribers)
	t.mux.Unlock()
}

func (t *mTicker) tick() {
	for {
		select {
		case tick := <-t.ticker.Chan():
			t.mux.Lock()
			for sub := range t.subscribers {
				select {
				case sub.tick <- tick:
				default:
					t.dropped++
				}
			}
			t.mux.Unlock()
		case <-t.stopCh:
			return
		}
	}
}
