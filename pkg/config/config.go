// Package config loads tempomaze settings from a TOML or YAML file and the
// environment.
//
// Resolution order, later wins:
//
//  1. [Default]
//  2. the config file, if one is given (format chosen by extension)
//  3. a .env file in the working directory, if present
//  4. TEMPOMAZE_* environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tempomaze/pkg/maze"
)

// ErrUnknownFormat is returned for config files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown config format")

// Environment variables read by [Load].
const (
	EnvAgent    = "TEMPOMAZE_AGENT"
	EnvDomain   = "TEMPOMAZE_DOMAIN"
	EnvRedisURL = "TEMPOMAZE_REDIS_URL"
	EnvCacheDir = "TEMPOMAZE_CACHE_DIR"
	EnvAddr     = "TEMPOMAZE_ADDR"
)

// DefaultAgent names the agent used when a problem or plan declares none.
const DefaultAgent = "a1"

// Config is the full settings tree.
type Config struct {
	Problem Problem `toml:"problem" yaml:"problem"`
	Render  Render  `toml:"render" yaml:"render"`
	Cache   Cache   `toml:"cache" yaml:"cache"`
	Server  Server  `toml:"server" yaml:"server"`
}

// Problem holds defaults for generated problems.
type Problem struct {
	Domain string `toml:"domain" yaml:"domain"`
	Name   string `toml:"name" yaml:"name"`
	Agent  string `toml:"agent" yaml:"agent"`
	Stairs bool   `toml:"stairs" yaml:"stairs"`
}

// Render holds drawing defaults.
type Render struct {
	RankDir string   `toml:"rankdir" yaml:"rankdir"`
	Palette []string `toml:"palette" yaml:"palette"`
}

// Cache selects the artifact cache. RedisURL takes precedence over Dir.
type Cache struct {
	Disabled bool          `toml:"disabled" yaml:"disabled"`
	Dir      string        `toml:"dir" yaml:"dir"`
	RedisURL string        `toml:"redis_url" yaml:"redis_url"`
	TTL      time.Duration `toml:"ttl" yaml:"ttl"`
}

// Server holds HTTP settings.
type Server struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Problem: Problem{Domain: maze.DefaultDomain, Agent: DefaultAgent},
		Render:  Render{RankDir: "LR"},
		Cache:   Cache{TTL: 7 * 24 * time.Hour},
		Server:  Server{Addr: ":8080"},
	}
}

// Load resolves the config. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Problem.Agent, EnvAgent)
	set(&c.Problem.Domain, EnvDomain)
	set(&c.Cache.RedisURL, EnvRedisURL)
	set(&c.Cache.Dir, EnvCacheDir)
	set(&c.Server.Addr, EnvAddr)
}

// AgentOr returns the configured agent, or DefaultAgent when unset.
func (c Config) AgentOr() string {
	if c.Problem.Agent == "" {
		return DefaultAgent
	}
	return c.Problem.Agent
}
