// Package server implements the HTTP API cmd/symexecd serves: explore a
// demo scenario's full state forest, search for a target()-reaching
// witness, describe a scenario's source, and report request metrics.
// Directly adapted from rfielding-turducken's pkg/server: same
// embed.FS-backed static assets, http.ServeMux routing, counters and
// time-series, JSON success/error envelopes, per-request
// context.WithTimeout — rewired endpoint-by-endpoint against
// engine.Scheduler instead of a Prolog CTL engine.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/swvm/symexec/pkg/demo"
	"github.com/swvm/symexec/pkg/engine"
	"github.com/swvm/symexec/pkg/llm"
	"github.com/swvm/symexec/pkg/present"
	"github.com/swvm/symexec/pkg/smt"
)

//go:embed static/*
var staticFiles embed.FS

// TimePoint is one recorded counter sample, same shape the teacher
// reports on its own /api/metrics endpoint.
type TimePoint struct {
	Time    time.Time `json:"time"`
	Counter string    `json:"counter"`
	Value   int64     `json:"value"`
}

// Server is the symexec HTTP API.
type Server struct {
	bridge smt.Bridge
	llm    *llm.Client
	logger zerolog.Logger
	mux    *http.ServeMux

	mu         sync.RWMutex
	counters   map[string]int64
	timeSeries []TimePoint
}

// New builds a Server with a fresh PrologBridge-backed SMT Bridge.
func New(logger zerolog.Logger) (*Server, error) {
	bridge, err := smt.NewPrologBridge()
	if err != nil {
		return nil, fmt.Errorf("creating smt bridge: %w", err)
	}
	return &Server{
		bridge:     bridge,
		llm:        llm.New(),
		logger:     logger,
		counters:   make(map[string]int64),
		timeSeries: []TimePoint{},
	}, nil
}

func (s *Server) incCounter(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	s.timeSeries = append(s.timeSeries, TimePoint{
		Time:    time.Now(),
		Counter: name,
		Value:   s.counters[name],
	})
	if len(s.timeSeries) > 1000 {
		s.timeSeries = s.timeSeries[len(s.timeSeries)-1000:]
	}
}

func (s *Server) getCounters() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}

func (s *Server) getTimeSeries() []TimePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TimePoint, len(s.timeSeries))
	copy(out, s.timeSeries)
	return out
}

// ListenAndServe wires every route and blocks serving addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/list", s.handleList)
	mux.HandleFunc("/api/describe", s.handleDescribe)
	mux.HandleFunc("/api/explore", s.handleExplore)
	mux.HandleFunc("/api/find", s.handleFind)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/", s.handleStatic)
	s.mux = mux

	s.logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, mux)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, map[string]interface{}{"success": false, "error": err.Error()})
}

// handleList returns every demo scenario's name and description.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	var out []entry
	for _, sc := range demo.All() {
		out = append(out, entry{sc.Name, sc.Description})
	}
	writeJSON(w, map[string]interface{}{"success": true, "scenarios": out})
}

// handleDescribe returns a scenario's source-like text.
func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("scenario")
	sc, err := demo.Find(name)
	if err != nil {
		writeError(w, err)
		return
	}
	fn, err := sc.Source.Produce()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"success": true, "source": present.FunctionText(fn)})
}

type runRequest struct {
	Scenario string `json:"scenario"`
	Budget   int    `json:"budget"`
	Bound    int64  `json:"bound"`
	Explain  bool   `json:"explain"`
}

func (s *Server) decodeRunRequest(r *http.Request) (runRequest, *demo.Scenario, *engine.Scheduler, error) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, nil, nil, fmt.Errorf("decoding request: %w", err)
	}
	if req.Budget <= 0 {
		req.Budget = 40
	}
	if req.Bound <= 0 {
		req.Bound = 256
	}
	sc, err := demo.Find(req.Scenario)
	if err != nil {
		return req, nil, nil, err
	}
	fn, err := sc.Source.Produce()
	if err != nil {
		return req, nil, nil, err
	}
	cfg := engine.DefaultConfig()
	cfg.SolverBound = req.Bound
	sch, err := engine.New(fn, s.bridge, cfg, s.logger)
	if err != nil {
		return req, nil, nil, err
	}
	return req, &sc, sch, nil
}

// handleExplore runs Explore and reports pool sizes.
func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, _, sch, err := s.decodeRunRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	result, err := sch.Explore(ctx, req.Budget)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{
		"success":          true,
		"run_id":           sch.RunID().String(),
		"frontier":         len(result.Frontier),
		"unreachable":      len(result.Unreachable),
		"terminated":       len(result.Terminated),
		"reaching":         len(result.Reaching),
		"steps_run":        result.StepsRun,
		"budget_exhausted": result.BudgetExhausted,
	})
	s.incCounter("explores")
}

// handleFind runs FindPathToTarget and reports the first witness found,
// optionally with an LLM-generated prose explanation.
func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, sc, sch, err := s.decodeRunRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	fn, err := sc.Source.Produce()
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	result, err := sch.FindPathToTarget(ctx, req.Budget)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(result.Reaching) == 0 {
		writeJSON(w, map[string]interface{}{
			"success":          true,
			"found":            false,
			"budget_exhausted": result.BudgetExhausted,
		})
		s.incCounter("finds")
		return
	}

	reaching := result.Reaching[0]
	witness, err := reaching.Witness(ctx, s.bridge, sch.Formals(), req.Bound)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"found":   true,
		"trace":   reaching.Trace,
		"witness": witness,
	}

	if req.Explain {
		prompt := s.llm.BuildPrompt(llm.WitnessReport{
			FunctionName: fn.Name,
			Trace:        reaching.Trace,
			Condition:    reaching.Condition.Render(),
			Witness:      witness,
			ReachedGoal:  true,
		})
		explanation, err := s.llm.Chat(ctx, prompt)
		if err == nil {
			resp["explanation"] = explanation
		}
	}

	writeJSON(w, resp)
	s.incCounter("finds")
}

// handleMetrics returns request counters and their time series.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"counters":   s.getCounters(),
		"timeSeries": s.getTimeSeries(),
	})
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}
	content, err := staticFiles.ReadFile("static" + path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	switch {
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	}
	w.Write(content)
}
