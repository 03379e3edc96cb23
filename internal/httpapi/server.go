// Package httpapi exposes the operator-facing HTTP surface: event
// submission, the realtime streams, and pending summary review.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hanagata/kioskd/core/events"
	"github.com/hanagata/kioskd/internal/store"
	"github.com/hanagata/kioskd/realtime"
)

const maxEventRequestBytes = 1 << 20

// recentCommandWindow bounds how many command ids are remembered for
// retry deduplication.
const recentCommandWindow = 256

// Submitter queues one event for the orchestrator. A false return
// means the loop is shut down.
type Submitter interface {
	Submit(event events.Event) bool
}

// SummaryStore is the slice of the store the API needs.
type SummaryStore interface {
	ListPendingSummaries(ctx context.Context) ([]store.PendingSummary, error)
	DismissSummary(ctx context.Context, summaryID string) error
}

type server struct {
	submitter Submitter
	hub       *realtime.Hub
	summaries SummaryStore

	mu           sync.Mutex
	seenCommands []string
}

func NewServer(addr string, submitter Submitter, hub *realtime.Hub, summaries SummaryStore) *http.Server {
	h := &server{
		submitter: submitter,
		hub:       hub,
		summaries: summaries,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/v1/events", h.handleEvents)
	mux.HandleFunc("/v1/stream", h.handleStream)
	mux.HandleFunc("/v1/summaries", h.handleSummaries)
	mux.HandleFunc("/v1/summaries/", h.handleSummaryByID)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type eventRequest struct {
	Type        string `json:"type"`
	CommandID   string `json:"command_id,omitempty"`
	UtteranceID string `json:"utterance_id,omitempty"`
}

func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventRequestBytes))
	if err != nil {
		http.Error(w, "read body failed", http.StatusBadRequest)
		return
	}

	var req eventRequest
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	if dec.More() {
		http.Error(w, "invalid json: trailing content", http.StatusBadRequest)
		return
	}

	event, err := eventFromRequest(req)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid event: %v", err), http.StatusBadRequest)
		return
	}

	if s.seenCommand(req.CommandID) {
		writeJSON(w, http.StatusOK, map[string]any{"accepted": true, "duplicate": true})
		return
	}

	if !s.submitter.Submit(event) {
		http.Error(w, "orchestrator unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true})
}

func eventFromRequest(req eventRequest) (events.Event, error) {
	switch req.Type {
	case "push_to_talk_pressed":
		return events.NewOperatorPushToTalkPressed(), nil
	case "push_to_talk_released":
		return events.NewOperatorPushToTalkReleased(), nil
	case "emergency_stop":
		return events.NewOperatorEmergencyStop(), nil
	case "resume":
		return events.NewOperatorResume(), nil
	case "force_reset":
		return events.NewOperatorForceReset(), nil
	case "playback_finished":
		if req.UtteranceID == "" {
			return nil, errors.New("playback_finished requires utterance_id")
		}
		return events.NewPlaybackFinished(req.UtteranceID), nil
	}
	return nil, fmt.Errorf("unknown event type %q", req.Type)
}

func (s *server) seenCommand(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seen := range s.seenCommands {
		if seen == id {
			return true
		}
	}
	s.seenCommands = append(s.seenCommands, id)
	if len(s.seenCommands) > recentCommandWindow {
		s.seenCommands = s.seenCommands[len(s.seenCommands)-recentCommandWindow:]
	}
	return false
}

func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, ok := realtime.ParseRole(r.URL.Query().Get("role"))
	if !ok {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	_ = s.hub.Attach(w, r, role)
}

func (s *server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	summaries, err := s.summaries.ListPendingSummaries(r.Context())
	if err != nil {
		http.Error(w, "failed to list summaries", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}

func (s *server) handleSummaryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	summaryID := strings.TrimPrefix(r.URL.Path, "/v1/summaries/")
	if summaryID == "" || strings.Contains(summaryID, "/") {
		http.Error(w, "invalid summary id", http.StatusBadRequest)
		return
	}
	if err := s.summaries.DismissSummary(r.Context(), summaryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "summary not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to dismiss summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dismissed": true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
