// Package observability provides hooks for metrics and tracing without a
// hard dependency on any backend.
//
// Register hooks once at startup:
//
//	observability.SetPipelineHooks(myHooks)
//	observability.SetCacheHooks(myHooks)
//
// The pipeline, cache users and HTTP server report through [Pipeline],
// [Cache] and [Requests]. The defaults discard every event.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives pipeline stage events. input is "problem" or
// "plan"; artifact is "dot", "svg" or "scene".
type PipelineHooks interface {
	OnParse(ctx context.Context, input string, size int, duration time.Duration, err error)
	OnRender(ctx context.Context, artifact string, size int, duration time.Duration, err error)
}

// CacheHooks receives artifact cache events. kind is "artifact" or "scene".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// RequestHooks receives one event per served HTTP request.
type RequestHooks interface {
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopPipelineHooks discards pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParse(context.Context, string, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnRender(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopRequestHooks discards request events.
type NoopRequestHooks struct{}

func (NoopRequestHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	requestHooks  RequestHooks  = NoopRequestHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetRequestHooks registers request hooks. Nil is ignored.
func SetRequestHooks(h RequestHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		requestHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Requests returns the registered request hooks.
func Requests() RequestHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return requestHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	requestHooks = NoopRequestHooks{}
}
