// Package testserver is a mock Lambda control plane used by
// internal/invocation's tests: a chi router serving the same four
// endpoints spec.md §6 documents, backed by an in-memory queue of
// canned events. Grounded on the broader example pack's use of
// go-chi/chi for lightweight HTTP test fixtures; this repo's teacher
// doesn't expose an HTTP mock of its own, so the router shape here
// follows chi's own idiomatic mux construction.
package testserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Event is one canned /invocation/next response.
type Event struct {
	DeadlineMS         int64
	InvokedFunctionARN string
	Body               string
}

// Posted records one /response or /error POST the loop under test made.
type Posted struct {
	RequestID string
	Kind      string // "response" or "error"
	Body      map[string]any
	ErrorType string
}

// Server is the mock control plane.
type Server struct {
	*httptest.Server

	mu             sync.Mutex
	queue          []Event
	posted         []Posted
	initErrs       []map[string]any
	failResponses  bool
}

// FailResponses makes every subsequent /response POST return a non-202
// status, for exercising the loop's fatal-error path.
func (s *Server) FailResponses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failResponses = true
}

// New starts a mock control plane preloaded with events.
func New(events []Event) *Server {
	s := &Server{queue: events}
	r := chi.NewRouter()
	r.Get("/2018-06-01/runtime/invocation/next", s.handleNext)
	r.Post("/2018-06-01/runtime/invocation/{id}/response", s.handleResponse)
	r.Post("/2018-06-01/runtime/invocation/{id}/error", s.handleError)
	r.Post("/2018-06-01/runtime/init/error", s.handleInitError)
	s.Server = httptest.NewServer(r)
	return s
}

// Addr returns the "host:port" form suitable for AWS_LAMBDA_RUNTIME_API.
func (s *Server) Addr() string {
	return s.Listener.Addr().String()
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		// Block-free test fixture: once drained, hang up with 500 so the
		// loop under test observes a control-plane failure rather than
		// spinning forever waiting on a real long-poll.
		http.Error(w, "no more events", http.StatusInternalServerError)
		return
	}
	evt := s.queue[0]
	s.queue = s.queue[1:]

	id := uuid.NewString()
	w.Header().Set("lambda-runtime-aws-request-id", id)
	w.Header().Set("lambda-runtime-deadline-ms", strconv.FormatInt(evt.DeadlineMS, 10))
	w.Header().Set("lambda-runtime-invoked-function-arn", evt.InvokedFunctionARN)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(evt.Body))
}

func (s *Server) handleResponse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, _ := io.ReadAll(r.Body)
	var decoded map[string]any
	_ = json.Unmarshal(body, &decoded)

	s.mu.Lock()
	fail := s.failResponses
	if !fail {
		s.posted = append(s.posted, Posted{RequestID: id, Kind: "response", Body: decoded})
	}
	s.mu.Unlock()
	if fail {
		http.Error(w, "simulated control plane failure", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, _ := io.ReadAll(r.Body)
	var decoded map[string]any
	_ = json.Unmarshal(body, &decoded)

	s.mu.Lock()
	s.posted = append(s.posted, Posted{
		RequestID: id,
		Kind:      "error",
		Body:      decoded,
		ErrorType: r.Header.Get("lambda-runtime-function-error-type"),
	})
	s.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleInitError(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var decoded map[string]any
	_ = json.Unmarshal(body, &decoded)

	s.mu.Lock()
	s.initErrs = append(s.initErrs, decoded)
	s.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

// Posted returns every /response and /error POST observed so far.
func (s *Server) Posted() []Posted {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Posted, len(s.posted))
	copy(out, s.posted)
	return out
}
