// Package gateway exposes the HTTP surface the platform bridge calls
// into: interaction callbacks plus health and readiness probes.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mcmetrics/bot/internal/platform"
)

// Dispatcher routes a control activation to its resolution handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, in *platform.Interaction) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// dispatchBudget bounds one whole workflow pass, selection prompts
// included.
const dispatchBudget = 10 * time.Minute

type HTTPServer struct {
	dispatcher Dispatcher
	db         Pinger
	cache      Pinger
}

func NewHTTPServer(dispatcher Dispatcher, db, cache Pinger) *HTTPServer {
	return &HTTPServer{dispatcher: dispatcher, db: db, cache: cache}
}

func (s *HTTPServer) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/interactions" {
		s.handleInteraction(w, r)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]any{}
	for name, pinger := range map[string]Pinger{"database": s.db, "redis": s.cache} {
		if pinger == nil {
			continue
		}
		if err := pinger.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = map[string]any{"status": "error", "error": err.Error()}
		} else {
			checks[name] = map[string]any{"status": "ok"}
		}
	}

	writeJSON(w, status, map[string]any{
		"ok":     status == http.StatusOK,
		"checks": checks,
	})
}

// handleInteraction acks immediately and runs the workflow in the
// background: a dispatch may suspend for minutes inside selection
// prompts, far past any sane webhook deadline.
func (s *HTTPServer) handleInteraction(w http.ResponseWriter, r *http.Request) {
	var in platform.Interaction
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid interaction payload")
		return
	}
	if in.ID == "" || in.CustomID == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Interaction id and customId are required")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchBudget)
		defer cancel()
		if err := s.dispatcher.Dispatch(ctx, &in); err != nil {
			log.Printf("gateway: dispatch interaction %s: %v", in.ID, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("gateway: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}
