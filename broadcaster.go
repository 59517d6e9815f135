package main

import (
	"fmt"
)

type broadcaster struct {
	reg *registry
	m   *metrics
}

// delivery is the outcome of one fan-out.
type delivery struct {
	attempts int
	failures []*DeliveryError
}

func newBroadcaster(reg *registry, m *metrics) *broadcaster {
	return &broadcaster{reg: reg, m: m}
}

// handleInbound decodes a sendMessage payload and fans it out to every
// registered connection, the sender included. receiverId is not used for
// routing.
func (b *broadcaster) handleInbound(data []byte) (delivery, error) {
	msg, err := decodeMessage(data)
	if err != nil {
		b.m.incr("malformed", 1)
		return delivery{}, err
	}
	return b.publish(msg)
}

func (b *broadcaster) publish(msg message) (delivery, error) {
	payload, err := encodeFrame(eventMessage, msg)
	if err != nil {
		return delivery{}, fmt.Errorf("encode message event: %w", err)
	}

	b.m.incr("broadcasts", 1)
	var d delivery
	for _, mem := range b.reg.snapshot() {
		d.attempts++
		if err := mem.ch.send(payload); err != nil {
			d.failures = append(d.failures, &DeliveryError{ID: mem.id, Err: err})
			b.m.incr("drops", 1)
			continue
		}
		b.m.incr("deliveries", 1)
	}
	return d, nil
}
