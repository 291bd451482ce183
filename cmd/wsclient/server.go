package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/irothenbaum/websocket-client/pkg/wsclient"
)

type statusSource interface {
	Status() wsclient.State
	HasPulse(ctx context.Context) (bool, error)
}

type healthResponse struct {
	Status string `json:"status"`
	Pulse  bool   `json:"pulse"`
}

// newRouter serves /metrics and /healthz. healthz reports 503 unless the
// runtime is running.
func newRouter(metrics http.Handler, src statusSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", metrics)
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), time.Second)
		defer cancel()

		state := src.Status()
		pulse, _ := src.HasPulse(ctx)

		code := http.StatusOK
		if state != wsclient.StateRunning {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: state.String(), Pulse: pulse})
	})
	return r
}
