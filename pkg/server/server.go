// Package server exposes the pipeline over HTTP.
//
//	GET  /healthz    build info
//	POST /v1/dot     problem text → DOT
//	POST /v1/svg     problem text → SVG (cached)
//	POST /v1/plan    planner output → plan report JSON
//	POST /v1/scene   {"problem", "plan", "agents"} → scene JSON (cached)
//
// Errors are JSON objects {"code", "error"} with a status derived from the
// code.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tempomaze/pkg/buildinfo"
	"github.com/matzehuels/tempomaze/pkg/errors"
	"github.com/matzehuels/tempomaze/pkg/observability"
	"github.com/matzehuels/tempomaze/pkg/pipeline"
	"github.com/matzehuels/tempomaze/pkg/render/dot"
	"github.com/matzehuels/tempomaze/pkg/trace"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	// Defaults are applied to every request; query parameters override
	// RankDir and Detailed.
	Defaults pipeline.Options
	Logger   *log.Logger
}

// Server handles API requests with a shared runner.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
	router   chi.Router
}

// New builds the router.
func New(runner *pipeline.Runner, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, defaults: opts.Defaults, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/dot", s.drawing(dot.FormatDOT, "text/vnd.graphviz"))
		r.Post("/svg", s.drawing(dot.FormatSVG, "image/svg+xml"))
		r.Post("/plan", s.plan)
		r.Post("/scene", s.scene)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		observability.Requests().OnRequest(r.Context(), r.Method, route, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) drawing(format dot.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			s.fail(w, err)
			return
		}
		opts := s.options(r)
		opts.Format = format
		out, hit, err := s.runner.RenderWithCacheInfo(r.Context(), body, opts)
		if err != nil {
			s.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Cache", cacheHeader(hit))
		_, _ = w.Write(out)
	}
}

func (s *Server) plan(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	p := s.runner.LoadPlan(body, s.defaults)
	if !p.HasOutput {
		s.fail(w, errors.New(errors.ErrCodeInvalidPlan, "empty planner output"))
		return
	}
	resp := planResponse{Report: trace.NewReport(p, r.URL.Query().Get("source")), Actions: []planAction{}}
	for _, a := range p.Actions {
		resp.Actions = append(resp.Actions, planAction{Start: a.Start, Duration: a.Duration, Name: a.Name, Args: a.Args})
	}
	writeJSON(w, http.StatusOK, resp)
}

type planAction struct {
	Start    float64  `json:"start"`
	Duration float64  `json:"duration"`
	Name     string   `json:"name"`
	Args     []string `json:"args"`
}

type planResponse struct {
	*trace.Report
	Actions []planAction `json:"actions"`
}

type sceneRequest struct {
	Problem string   `json:"problem"`
	Plan    *string  `json:"plan,omitempty"`
	Agents  []string `json:"agents,omitempty"`
}

func (s *Server) scene(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	var req sceneRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Problem == "" {
		s.fail(w, errors.New(errors.ErrCodeInvalidInput, "problem is required"))
		return
	}
	if err := errors.ValidateTokens("agent", req.Agents); err != nil {
		s.fail(w, err)
		return
	}

	opts := s.options(r)
	opts.Agents = req.Agents
	var plan []byte
	if req.Plan != nil {
		plan = []byte(*req.Plan)
	}
	out, hit, err := s.runner.SceneWithCacheInfo(r.Context(), []byte(req.Problem), plan, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheHeader(hit))
	_, _ = w.Write(out)
}

func (s *Server) options(r *http.Request) pipeline.Options {
	opts := s.defaults
	opts.Agents = nil
	q := r.URL.Query()
	if v := q.Get("rankdir"); v != "" {
		opts.RankDir = v
	}
	if q.Has("detailed") {
		opts.Detailed = q.Get("detailed") != "false"
	}
	opts.Refresh = q.Get("refresh") == "true"
	return opts
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(body) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty body")
	}
	return body, nil
}

type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Error: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
