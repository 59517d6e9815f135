package main

import (
	"net/http"

	"github.com/gorilla/mux"
)

func newHandler(h *hub) http.Handler {
	handler := mux.NewRouter()

	// Route websocket requests on any path
	handler.NewRoute().HeadersRegexp(
		// Requests with these headers will use this handler
		"Connection", "(?i)upgrade",
		"Upgrade", "(?i)^websocket$",
	).Handler(newWsHandler(h))

	handler.Methods("GET").Path("/").Handler(livenessHandler{})
	handler.Methods("GET").Path("/metrics").Handler(metricsHandler{h: h})
	handler.Methods("GET").Path("/client").Handler(clientHandler{})
	handler.Methods("POST").Path("/messages").Handler(postHandler{h: h})

	return cors(h.cfg, handler)
}

// cors answers preflight requests itself and decorates every other response.
// Browser origins outside cfg.AllowedOrigins get no CORS headers.
func cors(cfg *config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && cfg.allowOrigin(origin) {
			hdr := w.Header()
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Credentials", "true")
			hdr.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					hdr.Set("Access-Control-Allow-Headers", reqHeaders)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
