// Package cli implements the tempomaze command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tempomaze/pkg/buildinfo"
	"github.com/matzehuels/tempomaze/pkg/cache"
	"github.com/matzehuels/tempomaze/pkg/config"
	"github.com/matzehuels/tempomaze/pkg/errors"
	"github.com/matzehuels/tempomaze/pkg/observability"
	"github.com/matzehuels/tempomaze/pkg/pipeline"
)

const appName = "tempomaze"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a CLI logging to w at level, with built-in settings until a
// command loads the config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "tempomaze builds and inspects temporal maze planning problems",
		Long: `tempomaze converts ASCII mazes into temporal planning problems, parses
planner output back into per-agent paths and renders both as Graphviz
drawings or 3D scene payloads.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (.toml or .yaml)")

	root.AddCommand(c.gridCommand())
	root.AddCommand(c.stressCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.sceneCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.LogHooks{Logger: c.Logger}.Register()
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "load config")
	}
	c.Config = cfg
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// newRunner creates a pipeline runner over the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool, keyer cache.Keyer) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cc := c.Config.Cache
	switch {
	case noCache || cc.Disabled:
		return cache.NewNullCache(), nil
	case cc.RedisURL != "":
		store, err := cache.NewRedisCache(ctx, cc.RedisURL, appName+":")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "open redis cache")
		}
		return store, nil
	default:
		store, err := cache.NewFileCache(c.cacheDir())
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return store, nil
	}
}

func (c *CLI) cacheDir() string {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir
	}
	return cache.DefaultDir()
}

// pipelineOptions returns runner options seeded from the config.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		DefaultAgent: c.Config.AgentOr(),
		RankDir:      c.Config.Render.RankDir,
		Palette:      c.Config.Render.Palette,
		TTL:          c.Config.Cache.TTL,
		Logger:       c.Logger,
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
