package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/tempomaze/pkg/cache"
	"github.com/matzehuels/tempomaze/pkg/errors"
	"github.com/matzehuels/tempomaze/pkg/observability"
	"github.com/matzehuels/tempomaze/pkg/render/dot"
)

const problemText = `(define (problem tiny)
  (:domain temporal-maze)
  (:objects
    c00 c01 c11 - cell
    a1 - agent
  )
  (:init
    (agent-at a1 c00)
    (agent-free a1)
    (adjacent c00 c01)
    (adjacent c01 c00)
    (adjacent c01 c11)
    (adjacent c11 c01)
  )
  (:goal (and (agent-at a1 c11)))
)
`

const planText = `; some search noise
;;;; Solution Found
0.000: (move a1 c00 c01) [1.000]
1.000: (move a1 c01 c11) [1.000]
; Cost: 2.000
`

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Format != dot.FormatSVG || o.RankDir != DefaultRankDir || o.TTL != cache.DefaultTTL {
		t.Errorf("defaults = %+v", o)
	}

	first := o
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Format != first.Format || o.RankDir != first.RankDir || o.TTL != first.TTL {
		t.Error("ValidateAndSetDefaults is not idempotent")
	}
}

func TestValidateRankDir(t *testing.T) {
	tests := []struct {
		dir     string
		wantErr bool
	}{
		{"", false},
		{"LR", false},
		{"tb", false},
		{"diagonal", true},
	}
	for _, tt := range tests {
		if err := ValidateRankDir(tt.dir); (err != nil) != tt.wantErr {
			t.Errorf("ValidateRankDir(%q) = %v, wantErr %v", tt.dir, err, tt.wantErr)
		}
	}
}

func TestOptionsInvalidFormat(t *testing.T) {
	o := Options{Format: "png"}
	if err := o.ValidateAndSetDefaults(); err == nil {
		t.Error("expected error for png")
	}
}

func TestRenderDOTCached(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	opts := Options{Format: dot.FormatDOT}

	out, hit, err := r.RenderWithCacheInfo(ctx, []byte(problemText), opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first render hit the cache")
	}
	if !strings.Contains(string(out), `"c00" -> "c01"`) {
		t.Errorf("dot output missing edge:\n%s", out)
	}

	again, hit, err := r.RenderWithCacheInfo(ctx, []byte(problemText), opts)
	if err != nil || !hit || string(again) != string(out) {
		t.Errorf("second render: hit=%v err=%v", hit, err)
	}

	opts.Refresh = true
	if _, hit, _ := r.RenderWithCacheInfo(ctx, []byte(problemText), opts); hit {
		t.Error("Refresh still read the cache")
	}

	other := Options{Format: dot.FormatDOT, RankDir: "TB"}
	if _, hit, _ := r.RenderWithCacheInfo(ctx, []byte(problemText), other); hit {
		t.Error("different rankdir shared a cache entry")
	}
}

func TestRenderBadProblem(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Render(context.Background(), []byte("(not a problem"), Options{Format: dot.FormatDOT}); err == nil {
		t.Error("expected parse error")
	}
}

func TestScene(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)

	out, hit, err := r.SceneWithCacheInfo(ctx, []byte(problemText), []byte(planText), Options{DefaultAgent: "a1"})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first scene hit the cache")
	}
	var payload struct {
		Path []struct {
			Name string `json:"name"`
		} `json:"path"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range payload.Path {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "c00,c01,c11" {
		t.Errorf("path = %s", got)
	}

	if _, hit, _ := r.SceneWithCacheInfo(ctx, []byte(problemText), []byte(planText), Options{DefaultAgent: "a1"}); !hit {
		t.Error("repeat scene missed the cache")
	}
	if _, hit, _ := r.SceneWithCacheInfo(ctx, []byte(problemText), nil, Options{DefaultAgent: "a1"}); hit {
		t.Error("scene without plan shared the cache entry")
	}
}

const twoAgentProblem = `(define (problem pair)
  (:domain temporal-maze)
  (:objects
    c00 c01 c11 - cell
    a1 a2 - agent
  )
  (:init
    (agent-at a1 c00)
    (agent-at a2 c11)
    (adjacent c00 c01)
    (adjacent c01 c00)
    (adjacent c01 c11)
    (adjacent c11 c01)
  )
  (:goal (and (agent-at a1 c11) (agent-at a2 c00)))
)
`

const twoAgentPlan = `;;;; Solution Found
0.000: (move a1 c00 c01) [1.000]
0.000: (move a2 c11 c01) [1.000]
1.000: (move a2 c01 c00) [1.000]
`

func TestSceneDefaultAgentSplitsCache(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)

	drawn := func(agent string) (string, bool) {
		t.Helper()
		out, hit, err := r.SceneWithCacheInfo(ctx, []byte(twoAgentProblem), []byte(twoAgentPlan), Options{DefaultAgent: agent})
		if err != nil {
			t.Fatal(err)
		}
		var payload struct {
			Path []struct {
				Name string `json:"name"`
			} `json:"path"`
		}
		if err := json.Unmarshal(out, &payload); err != nil {
			t.Fatal(err)
		}
		var names []string
		for _, c := range payload.Path {
			names = append(names, c.Name)
		}
		return strings.Join(names, ","), hit
	}

	if got, hit := drawn("a1"); hit || got != "c00,c01" {
		t.Errorf("a1 scene = %s (hit=%v), want c00,c01", got, hit)
	}
	if got, hit := drawn("a2"); hit || got != "c11,c01,c00" {
		t.Errorf("a2 scene = %s (hit=%v), want c11,c01,c00", got, hit)
	}
	if _, hit := drawn("a1"); !hit {
		t.Error("repeat a1 scene missed the cache")
	}
}

func TestPathsInferredWithoutDeclaredAgents(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	p, err := r.LoadProblem([]byte(`(define (problem bare)
  (:domain temporal-maze)
  (:objects c00 c01 c11 - cell)
  (:init (adjacent c00 c01) (adjacent c01 c11))
)`), Options{})
	if err != nil {
		t.Fatal(err)
	}
	plan := r.LoadPlan([]byte(`;;;; Solution Found
0.000: (move robot-a c00 c01) [1.000]
0.000: (move robot-b c11 c01) [1.000]
`), Options{})

	paths := r.Paths(p, plan, Options{DefaultAgent: "a1"})
	if len(paths) != 2 || paths[0].Agent != "robot-a" || paths[1].Agent != "robot-b" {
		t.Fatalf("paths = %+v", paths)
	}
	if got := strings.Join(paths[1].Cells, ","); got != "c11,c01" {
		t.Errorf("robot-b cells = %s", got)
	}

	requested := r.Paths(p, plan, Options{Agents: []string{"robot-b"}})
	if len(requested) != 1 || requested[0].Agent != "robot-b" {
		t.Errorf("requested paths = %+v", requested)
	}
}

func TestPathsWithoutPlan(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	p, err := r.LoadProblem([]byte(problemText), Options{})
	if err != nil {
		t.Fatal(err)
	}
	paths := r.Paths(p, nil, Options{DefaultAgent: "a1"})
	if len(paths) != 1 || paths[0].Agent != "a1" || len(paths[0].Cells) != 0 {
		t.Errorf("paths = %+v", paths)
	}
}

func TestErrorCodes(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := r.Render(ctx, []byte("(define (domain x))"), Options{Format: dot.FormatDOT})
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidProblem {
		t.Errorf("bad problem code = %q (%v)", got, err)
	}
	_, err = r.Render(ctx, []byte(problemText), Options{Format: "gif"})
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidFormat {
		t.Errorf("bad format code = %q (%v)", got, err)
	}
}

type recordingHooks struct {
	events []string
}

func (h *recordingHooks) OnCacheHit(_ context.Context, kind string)  { h.events = append(h.events, "hit:"+kind) }
func (h *recordingHooks) OnCacheMiss(_ context.Context, kind string) { h.events = append(h.events, "miss:"+kind) }
func (h *recordingHooks) OnCacheSet(_ context.Context, kind string, _ int) {
	h.events = append(h.events, "set:"+kind)
}

func TestCacheHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetCacheHooks(rec)
	t.Cleanup(observability.Reset)

	r := newRunner(t)
	opts := Options{Format: dot.FormatDOT}
	for range 2 {
		if _, err := r.Render(context.Background(), []byte(problemText), opts); err != nil {
			t.Fatal(err)
		}
	}
	want := "miss:artifact,set:artifact,hit:artifact"
	if got := strings.Join(rec.events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}
