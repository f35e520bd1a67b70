package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tempomaze/pkg/cache"
	"github.com/matzehuels/tempomaze/pkg/errors"
	"github.com/matzehuels/tempomaze/pkg/maze"
	"github.com/matzehuels/tempomaze/pkg/observability"
	"github.com/matzehuels/tempomaze/pkg/pddl"
	"github.com/matzehuels/tempomaze/pkg/render/dot"
	"github.com/matzehuels/tempomaze/pkg/render/scene"
	"github.com/matzehuels/tempomaze/pkg/route"
	"github.com/matzehuels/tempomaze/pkg/trace"
)

// Runner executes pipeline stages with caching. It holds no per-request
// state and is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer uses cache.DefaultKeyer and a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// LoadProblem parses problem text. Skipped content is logged at debug level.
func (r *Runner) LoadProblem(data []byte, opts Options) (*maze.Problem, error) {
	logger := r.logger(opts)
	start := time.Now()
	p, err := pddl.Parse(bytes.NewReader(data), pddl.ReadOptions{
		DefaultAgent: opts.DefaultAgent,
		Logger:       logger.Debugf,
	})
	observability.Pipeline().OnParse(context.Background(), "problem", len(data), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProblem, err, "parse problem")
	}
	logger.Debug("parsed problem",
		"name", p.Name,
		"cells", p.Graph.CellCount(),
		"edges", p.Graph.EdgeCount(),
		"agents", len(p.Agents))
	return p, nil
}

// LoadPlan parses planner output.
func (r *Runner) LoadPlan(data []byte, opts Options) *trace.Plan {
	start := time.Now()
	plan := trace.Parse(string(data))
	observability.Pipeline().OnParse(context.Background(), "plan", len(data), time.Since(start), nil)
	r.logger(opts).Debug("parsed plan", "outcome", plan.Outcome(), "actions", len(plan.Actions))
	return plan
}

// Paths reconstructs the selected agents' paths through p. When neither
// opts nor the problem names an agent, the agents are inferred from the
// plan. When plan is nil every path is empty, leaving only start and goal
// markers.
func (r *Runner) Paths(p *maze.Problem, plan *trace.Plan, opts Options) []route.Path {
	var actions []trace.Action
	if plan != nil {
		actions = plan.Actions
	}
	ro := SnifferFor(p, opts.DefaultAgent, r.logger(opts))
	var agents []string
	if len(opts.Agents) > 0 || len(p.Agents) > 0 {
		agents = scene.SelectAgents(p, opts.Agents, opts.DefaultAgent)
	}
	return route.ReconstructAll(actions, agents, ro)
}

// SnifferFor returns reconstruction options that classify tokens using the
// problem's declared agents and cells.
func SnifferFor(p *maze.Problem, defaultAgent string, logger *log.Logger) route.Options {
	cells := p.Graph.Cells()
	ids := make([]string, len(cells))
	for i, c := range cells {
		ids[i] = c.ID
	}
	opts := route.Options{
		DefaultAgent: defaultAgent,
		Sniffer:      route.NewSniffer(p.AgentIDs(), ids),
	}
	if logger != nil {
		opts.Logger = logger.Debugf
	}
	return opts
}

// RenderWithCacheInfo draws problem text in opts.Format and reports
// whether the result came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, problem []byte, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid options")
	}
	logger := r.logger(opts)
	key := r.Keyer.ArtifactKey(cache.Hash(problem), opts.ArtifactKeyOpts())

	if data, ok := r.cached(ctx, kindArtifact, key, opts); ok {
		logger.Debug("artifact cache hit", "format", opts.Format)
		return data, true, nil
	}

	p, err := r.LoadProblem(problem, opts)
	if err != nil {
		return nil, false, err
	}
	start := time.Now()
	src := dot.ToDOT(p.Graph, opts.DOTOptions())
	out := []byte(src)
	if opts.Format == dot.FormatSVG {
		out, err = dot.RenderSVG(ctx, src)
	}
	observability.Pipeline().OnRender(ctx, string(opts.Format), len(out), time.Since(start), err)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}
	r.store(ctx, kindArtifact, key, out, opts)
	logger.Info("rendered maze", "format", opts.Format, "bytes", len(out))
	return out, false, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, problem []byte, opts Options) ([]byte, error) {
	out, _, err := r.RenderWithCacheInfo(ctx, problem, opts)
	return out, err
}

// SceneWithCacheInfo builds the scene JSON for problem text and optional
// planner output.
func (r *Runner) SceneWithCacheInfo(ctx context.Context, problem, planOutput []byte, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid options")
	}
	logger := r.logger(opts)
	planHash := ""
	if planOutput != nil {
		planHash = cache.Hash(planOutput)
	}
	key := r.Keyer.SceneKey(cache.Hash(problem), opts.SceneKeyOpts(planHash))
	if data, ok := r.cached(ctx, kindScene, key, opts); ok {
		logger.Debug("scene cache hit")
		return data, true, nil
	}

	p, err := r.LoadProblem(problem, opts)
	if err != nil {
		return nil, false, err
	}
	var plan *trace.Plan
	if planOutput != nil {
		plan = r.LoadPlan(planOutput, opts)
	}
	start := time.Now()
	s := scene.Build(p, r.Paths(p, plan, opts), scene.Options{Palette: opts.Palette})

	var buf bytes.Buffer
	err = scene.RenderJSON(&buf, s)
	observability.Pipeline().OnRender(ctx, kindScene, buf.Len(), time.Since(start), err)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	r.store(ctx, kindScene, key, buf.Bytes(), opts)
	logger.Info("built scene", "cells", len(s.Cells), "agents", len(s.Agents))
	return buf.Bytes(), false, nil
}

// Scene is SceneWithCacheInfo without the cache hit flag.
func (r *Runner) Scene(ctx context.Context, problem, planOutput []byte, opts Options) ([]byte, error) {
	out, _, err := r.SceneWithCacheInfo(ctx, problem, planOutput, opts)
	return out, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Cache entry kinds reported to observability hooks.
const (
	kindArtifact = "artifact"
	kindScene    = "scene"
)

func (r *Runner) cached(ctx context.Context, kind, key string, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.logger(opts).Warn("cache read failed", "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, kind)
	} else {
		observability.Cache().OnCacheMiss(ctx, kind)
	}
	return data, hit
}

func (r *Runner) store(ctx context.Context, kind, key string, data []byte, opts Options) {
	if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
		r.logger(opts).Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
