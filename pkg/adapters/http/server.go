package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/launchplan/internal/logging"
	"github.com/aretw0/launchplan/internal/presentation/graph"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines what the server needs from the launchplan core.
type Engine interface {
	Plans() ([]string, error)
	Describe(name string) (*domain.Plan, error)
	Build(ctx context.Context, name string, overrides map[string]string) (*domain.LaunchPlan, error)
	Watch(ctx context.Context) (<-chan string, error)
}

// Server serves plan introspection and building over JSON.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Version string

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithStreams shares a StreamManager whose hooks were given to the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.Version = strings.TrimSpace(v) }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// BuildRequest is the body of POST /plans/{name}/build.
type BuildRequest struct {
	Arguments map[string]string `json:"arguments"`
	// Artifacts includes the expanded artifact texts in the response.
	Artifacts bool `json:"artifacts"`
}

// BuildResponse is the result of a successful build.
type BuildResponse struct {
	Plan      *domain.LaunchPlan      `json:"plan"`
	Nodes     []domain.NodeDescriptor `json:"nodes"`
	Artifacts map[string]string       `json:"artifacts,omitempty"`
}

// PlanInfo describes a plan definition.
type PlanInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Arguments   []domain.Argument `json:"arguments"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager()
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/plans", s.ListPlans)
	r.Get("/plans/{name}", s.DescribePlan)
	r.Post("/plans/{name}/build", s.BuildPlan)
	r.Get("/plans/{name}/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	version := s.Version
	if version == "" {
		version = "unknown"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "launchplan-http",
		"version": version,
	})
}

// ListPlans handles the GET /plans request.
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.Plans()
	if err != nil {
		s.fail(w, "list plans", err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// DescribePlan handles the GET /plans/{name} request.
func (s *Server) DescribePlan(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Describe(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "describe", err)
		return
	}
	info := PlanInfo{Name: def.Name(), Description: def.Description(), Arguments: def.Arguments()}
	if info.Arguments == nil {
		info.Arguments = []domain.Argument{}
	}
	s.writeJSON(w, http.StatusOK, info)
}

// BuildPlan handles the POST /plans/{name}/build request.
// An empty body builds with defaults.
func (s *Server) BuildPlan(w http.ResponseWriter, r *http.Request) {
	var body BuildRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			s.logger.Warn("BuildPlan: invalid request body", "error", err)
			return
		}
	}

	lp, err := s.Engine.Build(r.Context(), chi.URLParam(r, "name"), body.Arguments)
	if err != nil {
		s.fail(w, "build", err)
		return
	}

	resp := BuildResponse{Plan: lp, Nodes: lp.Nodes()}
	if body.Artifacts {
		resp.Artifacts = collectArtifacts(lp)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetGraph handles the GET /plans/{name}/graph request.
// Query parameters are passed as argument overrides.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	overrides := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			overrides[k] = v[len(v)-1]
		}
	}
	lp, err := s.Engine.Build(r.Context(), chi.URLParam(r, "name"), overrides)
	if err != nil {
		s.fail(w, "graph", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(lp))
}

// SubscribeEvents handles the GET /events request (SSE).
// With ?reload=true it streams catalog changes instead of lifecycle events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming not supported"})
		return
	}

	var events <-chan string
	if r.URL.Query().Get("reload") == "true" {
		watch, err := s.Engine.Watch(r.Context())
		if err != nil {
			s.writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
			return
		}
		events = watch
	} else {
		topic := r.URL.Query().Get("plan")
		if topic == "" {
			topic = AllPlans
		}
		ch, cancel := s.Streams.Subscribe(topic)
		defer cancel()
		events = ch
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func collectArtifacts(lp *domain.LaunchPlan) map[string]string {
	out := make(map[string]string)
	var walk func(*domain.LaunchPlan)
	walk = func(p *domain.LaunchPlan) {
		for k, v := range p.Artifacts {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
		for _, st := range p.Steps {
			if st.Kind == domain.ActionInclude && st.Include != nil {
				walk(st.Include)
			}
		}
	}
	walk(lp)
	return out
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTemplateExpansion):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnknownArgument),
		errors.Is(err, domain.ErrDuplicateArgument),
		errors.Is(err, domain.ErrUnknownArtifact),
		errors.Is(err, domain.ErrPlanInclusion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
