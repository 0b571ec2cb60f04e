// Package apitest provides an in-memory experiment service for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"a3kd/internal/api"

	"github.com/go-chi/chi/v5"
)

// Default catalog served by a new Server.
var (
	Teachers = []api.ModelOption{{ID: "resnet110", Name: "ResNet110 (teacher, CIFAR-100)"}}
	Students = []api.ModelOption{{ID: "resnet8", Name: "ResNet8 (student, CIFAR-100)"}}
)

type experiment struct {
	id        string
	config    api.ExperimentConfig
	status    string
	metrics   api.MetricSeries
	assistant api.Optional[api.AssistantResult]
}

// Server emulates the experiment service over HTTP. New experiments start
// in "running"; episodes and assistants are appended by the test.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	counter     int
	order       []string
	experiments map[string]*experiment
	failures    map[string]int // route pattern -> status code
	requests    []*http.Request
}

// NewServer starts a server. Call Close when done.
func NewServer() *Server {
	s := &Server{
		experiments: make(map[string]*experiment),
		failures:    make(map[string]int),
	}
	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/health", s.handleHealth)
	r.Route("/models", func(r chi.Router) {
		r.Get("/teachers", s.handleModels(Teachers))
		r.Get("/students", s.handleModels(Students))
	})
	r.Route("/experiments", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{experimentID}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Get("/metrics", s.handleMetrics)
			r.Get("/best-assistant", s.handleAssistant)
		})
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	})
	s.Server = httptest.NewServer(r)
	return s
}

// Fail makes every request matching the chi route pattern (e.g.
// "/experiments/{experimentID}/metrics") answer with code until cleared
// with code 0.
func (s *Server) Fail(pattern string, code int) {
	pattern = normalizePattern(pattern)
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == 0 {
		delete(s.failures, pattern)
		return
	}
	s.failures[pattern] = code
}

// AddEpisode appends one episode to an experiment's metrics.
func (s *Server) AddEpisode(id string, accuracy, reward float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.experiments[id]
	if !ok {
		return
	}
	e.metrics.Episodes = append(e.metrics.Episodes, len(e.metrics.Episodes)+1)
	e.metrics.StudentAccuracy = append(e.metrics.StudentAccuracy, accuracy)
	e.metrics.Reward = append(e.metrics.Reward, reward)
}

// SetAssistant sets the best assistant of an experiment.
func (s *Server) SetAssistant(id string, a api.AssistantResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.experiments[id]; ok {
		e.assistant = api.Present(a)
	}
}

// SetStatus sets the status of an experiment.
func (s *Server) SetStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.experiments[id]; ok {
		e.status = status
	}
}

// Requests returns the requests received so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// failed writes the configured failure for the matched route, if any.
func (s *Server) failed(w http.ResponseWriter, r *http.Request) bool {
	pattern := normalizePattern(chi.RouteContext(r.Context()).RoutePattern())
	s.mu.Lock()
	code, ok := s.failures[pattern]
	s.mu.Unlock()
	if !ok {
		return false
	}
	writeJSON(w, code, map[string]string{"detail": http.StatusText(code)})
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModels(models []api.ModelOption) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.failed(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, models)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, r) {
		return
	}
	s.mu.Lock()
	out := make([]api.ExperimentSummary, 0, len(s.order))
	for _, id := range s.order {
		e := s.experiments[id]
		out = append(out, api.ExperimentSummary{
			ID:           e.id,
			Name:         e.config.Name,
			Dataset:      e.config.Dataset,
			TeacherID:    e.config.TeacherID,
			StudentID:    e.config.StudentID,
			Status:       e.status,
			BestAccuracy: bestAccuracy(e),
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, r) {
		return
	}
	var cfg api.ExperimentConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	if cfg.SearchEpisodes <= 0 || cfg.SearchEpisodes > api.MaxSearchEpisodes {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "search_episodes out of range"})
		return
	}
	s.mu.Lock()
	s.counter++
	id := fmt.Sprintf("exp_%d", s.counter)
	s.experiments[id] = &experiment{id: id, config: cfg, status: "running"}
	s.order = append(s.order, id)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, api.CreateResult{ExperimentID: id, Status: "running"})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (experiment, bool) {
	if s.failed(w, r) {
		return experiment{}, false
	}
	id := chi.URLParam(r, "experimentID")
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.experiments[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Experiment not found"})
		return experiment{}, false
	}
	return *e, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	d := api.ExperimentDetail{
		ID:           e.id,
		Status:       e.status,
		Config:       e.config,
		BestAccuracy: bestAccuracy(&e),
	}
	if a, ok := e.assistant.Get(); ok {
		d.BestAssistantID = api.Present(a.ArchitectureID)
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	m := e.metrics
	if m.Episodes == nil {
		m = api.MetricSeries{Episodes: []int{}, StudentAccuracy: []float64{}, Reward: []float64{}}
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	a, ok := e.assistant.Get()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Experiment not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func normalizePattern(p string) string {
	if p == "/" {
		return p
	}
	return strings.TrimRight(p, "/")
}

func bestAccuracy(e *experiment) api.Optional[float64] {
	if a, ok := e.assistant.Get(); ok {
		return api.Present(a.ValAccuracy)
	}
	return api.Absent[float64]()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", api.CTJSON)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
