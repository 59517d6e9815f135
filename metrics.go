package main

import (
	"io"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

type metrics struct {
	log  io.Writer
	reg  gometrics.Registry
	tick time.Duration
}

func newMetrics(reg gometrics.Registry, log io.Writer, tick time.Duration) *metrics {
	if reg == nil {
		reg = gometrics.NewRegistry()
	}
	return &metrics{
		log:  log,
		reg:  reg,
		tick: tick,
	}
}

// start reports the registry as JSON every tick. A zero tick disables it.
func (m *metrics) start() {
	if m.tick <= 0 || m.log == nil {
		return
	}
	go gometrics.WriteJSON(m.reg, m.tick, m.log)
}

func (m *metrics) writeOnce() {
	if m.log == nil {
		return
	}
	gometrics.WriteJSONOnce(m.reg, m.log)
}

func (m *metrics) writeJSON(w io.Writer) {
	gometrics.WriteJSONOnce(m.reg, w)
}

func (m *metrics) incr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, m.reg).Inc(i)
}

func (m *metrics) decr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, m.reg).Dec(i)
}

func (m *metrics) gauge(name string, v int64) {
	gometrics.GetOrRegisterGauge(name, m.reg).Update(v)
}

func (m *metrics) count(name string) int64 {
	return gometrics.GetOrRegisterCounter(name, m.reg).Count()
}
