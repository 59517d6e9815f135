package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type wsHandler struct {
	h        *hub
	upgrader *websocket.Upgrader
}

func newWsHandler(h *hub) wsHandler {
	return wsHandler{
		h: h,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return h.cfg.allowOrigin(r.Header.Get("Origin"))
			},
		},
	}
}

func (wsh wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := wsh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wsh.h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := newConnection(websocketInteractor{ws: ws}, wsh.h, uuid.NewString())
	c.run()
}

type livenessHandler struct{}

func (livenessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Api is running"})
}

type postHandler struct {
	h *hub
}

func (ph postHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, ph.h.cfg.MaxMessageSize+1))
	if err != nil {
		sendBadRequestError(w, "Unable to read POST body.")
		return
	}
	if int64(len(body)) > ph.h.cfg.MaxMessageSize {
		sendBadRequestError(w, fmt.Sprintf("Body must be at most %d bytes.", ph.h.cfg.MaxMessageSize))
		return
	}

	msg, err := decodeMessage(body)
	if err != nil {
		ph.h.m.incr("malformed", 1)
		ph.h.log.Error("dropping malformed message", "source", "http", "error", err)
		sendBadRequestError(w, err.Error())
		return
	}
	if _, err := ph.h.publish(msg); err != nil {
		http.Error(w, "Error: unable to broadcast message.", http.StatusInternalServerError)
		return
	}
	w.Write([]byte("OK\n"))
}

type metricsHandler struct {
	h *hub
}

func (mh metricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	mh.h.m.writeJSON(w)
}

type clientHandler struct{}

func (clientHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	webTemplate.Execute(w, templateArgs{Host: r.Host})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendBadRequestError(w http.ResponseWriter, str string) {
	http.Error(w,
		fmt.Sprintf("Error: bad request. %s", str),
		http.StatusBadRequest)
}
