package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level. It implements
// all hook interfaces.
type LogHooks struct {
	Logger *log.Logger
}

// Register installs h for every hook kind.
func (h LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetRequestHooks(h)
}

func (h LogHooks) OnParse(_ context.Context, input string, size int, d time.Duration, err error) {
	h.Logger.Debug("parse", "input", input, "bytes", size, "duration", d, "err", err)
}

func (h LogHooks) OnRender(_ context.Context, artifact string, size int, d time.Duration, err error) {
	h.Logger.Debug("render", "artifact", artifact, "bytes", size, "duration", d, "err", err)
}

func (h LogHooks) OnCacheHit(_ context.Context, kind string) {
	h.Logger.Debug("cache hit", "kind", kind)
}

func (h LogHooks) OnCacheMiss(_ context.Context, kind string) {
	h.Logger.Debug("cache miss", "kind", kind)
}

func (h LogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.Logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Debug("request", "method", method, "route", route, "status", status, "duration", d)
}
