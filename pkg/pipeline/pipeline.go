// Package pipeline runs the problem → drawing and problem + plan → scene
// flows shared by the CLI and the HTTP server.
//
// A [Runner] parses inputs with the leniency the reader allows, renders
// with [dot] and [scene], and caches rendered artifacts under keys derived
// from a hash of the input text:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	svg, err := runner.Render(ctx, problemText, pipeline.Options{Format: dot.FormatSVG})
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tempomaze/pkg/cache"
	"github.com/matzehuels/tempomaze/pkg/render/dot"
)

// DefaultRankDir is the Graphviz direction used when none is set.
const DefaultRankDir = "LR"

// ValidRankDirs lists the accepted Graphviz rank directions.
var ValidRankDirs = []string{"LR", "TB", "RL", "BT"}

// Options controls parsing, rendering and caching.
type Options struct {
	// DefaultAgent owns legacy single-agent facts and actions and is the
	// agent drawn when a problem declares none.
	DefaultAgent string

	// Format is the drawing format. Defaults to dot.FormatSVG.
	Format   dot.Format
	RankDir  string
	Detailed bool

	// Agents selects whose paths the scene shows. Empty selects one agent
	// (see scene.SelectAgents).
	Agents  []string
	Palette []string

	// Refresh bypasses cache reads. Results are still stored.
	Refresh bool
	// TTL for stored artifacts. Defaults to cache.DefaultTTL.
	TTL time.Duration

	Logger *log.Logger
}

// ValidateAndSetDefaults normalizes o in place.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = dot.FormatSVG
	}
	f, err := dot.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f
	if err := ValidateRankDir(o.RankDir); err != nil {
		return err
	}
	if o.RankDir == "" {
		o.RankDir = DefaultRankDir
	}
	o.RankDir = strings.ToUpper(o.RankDir)
	if o.TTL <= 0 {
		o.TTL = cache.DefaultTTL
	}
	return nil
}

// ValidateRankDir accepts an empty direction or one of ValidRankDirs.
func ValidateRankDir(dir string) error {
	if dir == "" || slices.Contains(ValidRankDirs, strings.ToUpper(dir)) {
		return nil
	}
	return fmt.Errorf("invalid rankdir %q (want one of %s)", dir, strings.Join(ValidRankDirs, ", "))
}

// DOTOptions returns the drawing options.
func (o *Options) DOTOptions() dot.Options {
	return dot.Options{RankDir: o.RankDir, Detailed: o.Detailed}
}

// ArtifactKeyOpts returns the cache key options of the drawing.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: string(o.Format), RankDir: o.RankDir, Detailed: o.Detailed}
}

// SceneKeyOpts returns the cache key options of a scene over planHash.
func (o *Options) SceneKeyOpts(planHash string) cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		PlanHash:     planHash,
		DefaultAgent: o.DefaultAgent,
		Agents:       o.Agents,
		Palette:      o.Palette,
	}
}
