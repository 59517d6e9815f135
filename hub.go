package main

import (
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"
)

// hub wires the registry, broadcaster and ping ticker together and is the
// one place inbound events and their errors get logged.
type hub struct {
	cfg    *config
	log    *slog.Logger
	m      *metrics
	reg    *registry
	bc     *broadcaster
	ticker *mTicker
}

func newHub(cfg *config, log *slog.Logger, m *metrics, clock clockwork.Clock) *hub {
	reg := newRegistry()
	return &hub{
		cfg:    cfg,
		log:    log,
		m:      m,
		reg:    reg,
		bc:     newBroadcaster(reg, m),
		ticker: newMTicker(clock, cfg.PingPeriod),
	}
}

func (h *hub) connect(c *connection) error {
	if err := h.reg.add(c.id, c); err != nil {
		c.log.Error("rejecting connection", "error", err)
		return err
	}
	n := h.reg.len()
	h.m.incr("websockets", 1)
	h.m.gauge("connections", int64(n))
	c.log.Info("client connected", "connections", n)

	payload, err := encodeFrame(eventConnect, connectData{SID: c.id})
	if err != nil {
		c.log.Error("encode connect event", "error", err)
		return nil
	}
	if err := c.send(payload); err != nil {
		c.log.Warn("connect event not delivered", "error", err)
	}
	return nil
}

func (h *hub) disconnect(c *connection) {
	removed := h.reg.remove(c.id)
	c.close()

	n := h.reg.len()
	h.m.decr("websockets", 1)
	h.m.gauge("connections", int64(n))
	c.log.Info("client disconnected", "registered", removed, "connections", n)
}

func (h *hub) dispatch(c *connection, raw []byte) {
	f, err := decodeFrame(raw)
	if err != nil {
		h.m.incr("malformed", 1)
		c.log.Error("dropping frame", "error", err)
		return
	}

	switch f.Event {
	case eventSendMessage:
		d, err := h.bc.handleInbound(f.Data)
		h.logDelivery(c.log, d, err)
	default:
		c.log.Warn("dropping unknown event", "event", f.Event)
	}
}

// publish broadcasts a message that did not arrive over a websocket.
func (h *hub) publish(msg message) (delivery, error) {
	d, err := h.bc.publish(msg)
	h.logDelivery(h.log.With("source", "http"), d, err)
	return d, err
}

func (h *hub) logDelivery(log *slog.Logger, d delivery, err error) {
	if err != nil {
		var malformed *MalformedMessageError
		if errors.As(err, &malformed) {
			log.Error("dropping malformed message", "error", err)
			return
		}
		log.Error("broadcast failed", "error", err)
		return
	}

	for _, f := range d.failures {
		log.Warn("delivery failed", "to", f.ID, "error", f.Err)
	}
	log.Debug("message broadcast", "attempts", d.attempts, "failed", len(d.failures))
}

func (h *hub) shutdown() {
	h.ticker.stop()
	n := h.reg.closeAll()
	h.m.gauge("connections", 0)
	h.log.Info("hub stopped", "closed", n)
}
