// Package observability defines instrumentation hooks for the engine, pipeline, caches and server.
//
// Instrumentation is optional: the fractal engine, the render pipeline, the
// caches and the HTTP server emit events through small hook interfaces whose
// defaults do nothing. A binary that wants metrics registers its own
// implementations at startup.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetFractalHooks(&myFractalHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Fractal().OnPassStart(ctx, "mandelbrot", "full", stride)
//	// ... run the pass ...
//	observability.Fractal().OnPassComplete(ctx, "mandelbrot", "full", stride, inside, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Fractal Hooks
// =============================================================================

// FractalHooks receives events from iteration passes and refinement
// schedules.
type FractalHooks interface {
	// Pass events. kind is "full", "progressive" or "extend".
	OnPassStart(ctx context.Context, variant, kind string, stride int)
	OnPassComplete(ctx context.Context, variant, kind string, stride, inside int, duration time.Duration, err error)

	// Refinement schedule events
	OnRefineStart(ctx context.Context, startStride, finalStride int)
	OnRefineComplete(ctx context.Context, passes int, duration time.Duration, err error)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the render pipeline.
type PipelineHooks interface {
	OnRenderStart(ctx context.Context, variant string, width, height int)
	OnRenderComplete(ctx context.Context, variant string, bytes int, duration time.Duration, err error)

	OnDimensionStart(ctx context.Context, initialSize int)
	OnDimensionComplete(ctx context.Context, passes int, estimate float64, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives cache lookups and writes. keyType is "render" or
// "dimension".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP server.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFractalHooks is a no-op implementation of FractalHooks.
type NoopFractalHooks struct{}

func (NoopFractalHooks) OnPassStart(context.Context, string, string, int) {}
func (NoopFractalHooks) OnPassComplete(context.Context, string, string, int, int, time.Duration, error) {
}
func (NoopFractalHooks) OnRefineStart(context.Context, int, int)                      {}
func (NoopFractalHooks) OnRefineComplete(context.Context, int, time.Duration, error) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRenderStart(context.Context, string, int, int)                    {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnDimensionStart(context.Context, int)                              {}
func (NoopPipelineHooks) OnDimensionComplete(context.Context, int, float64, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopServerHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// slot holds one registered hook implementation.
type slot[T any] struct {
	mu   sync.RWMutex
	hook T
	noop T
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hook
}

func (s *slot[T]) set(h T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = h
}

func (s *slot[T]) reset() { s.set(s.noop) }

var (
	fractalHooks  = &slot[FractalHooks]{hook: NoopFractalHooks{}, noop: NoopFractalHooks{}}
	pipelineHooks = &slot[PipelineHooks]{hook: NoopPipelineHooks{}, noop: NoopPipelineHooks{}}
	cacheHooks    = &slot[CacheHooks]{hook: NoopCacheHooks{}, noop: NoopCacheHooks{}}
	serverHooks   = &slot[ServerHooks]{hook: NoopServerHooks{}, noop: NoopServerHooks{}}
)

// SetFractalHooks registers h. A nil h is ignored.
func SetFractalHooks(h FractalHooks) {
	if h != nil {
		fractalHooks.set(h)
	}
}

// SetPipelineHooks registers h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineHooks.set(h)
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.set(h)
	}
}

// SetServerHooks registers h. A nil h is ignored.
func SetServerHooks(h ServerHooks) {
	if h != nil {
		serverHooks.set(h)
	}
}

func Fractal() FractalHooks   { return fractalHooks.get() }
func Pipeline() PipelineHooks { return pipelineHooks.get() }
func Cache() CacheHooks       { return cacheHooks.get() }
func Server() ServerHooks     { return serverHooks.get() }

// Reset restores the no-op hooks.
func Reset() {
	fractalHooks.reset()
	pipelineHooks.reset()
	cacheHooks.reset()
	serverHooks.reset()
}
