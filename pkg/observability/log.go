package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// charmbracelet logger. It is what `fractalview --verbose` installs.
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ FractalHooks  = LogHooks{}
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ ServerHooks   = LogHooks{}
)

// UseLogger registers LogHooks writing to l for all four hook kinds.
func UseLogger(l *log.Logger) {
	h := LogHooks{Logger: l.WithPrefix("hooks")}
	SetFractalHooks(h)
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetServerHooks(h)
}

func (h LogHooks) OnPassStart(_ context.Context, variant, kind string, stride int) {
	h.Logger.Debug("pass start", "variant", variant, "kind", kind, "stride", stride)
}

func (h LogHooks) OnPassComplete(_ context.Context, variant, kind string, stride, inside int, d time.Duration, err error) {
	h.Logger.Debug("pass complete", "variant", variant, "kind", kind, "stride", stride, "inside", inside, "duration", d, "err", err)
}

func (h LogHooks) OnRefineStart(_ context.Context, startStride, finalStride int) {
	h.Logger.Debug("refine start", "from", startStride, "to", finalStride)
}

func (h LogHooks) OnRefineComplete(_ context.Context, passes int, d time.Duration, err error) {
	h.Logger.Debug("refine complete", "passes", passes, "duration", d, "err", err)
}

func (h LogHooks) OnRenderStart(_ context.Context, variant string, width, height int) {
	h.Logger.Debug("render start", "output", variant, "width", width, "height", height)
}

func (h LogHooks) OnRenderComplete(_ context.Context, variant string, bytes int, d time.Duration, err error) {
	h.Logger.Debug("render complete", "output", variant, "bytes", bytes, "duration", d, "err", err)
}

func (h LogHooks) OnDimensionStart(_ context.Context, initialSize int) {
	h.Logger.Debug("dimension start", "initial_size", initialSize)
}

func (h LogHooks) OnDimensionComplete(_ context.Context, passes int, estimate float64, d time.Duration, err error) {
	h.Logger.Debug("dimension complete", "passes", passes, "estimate", estimate, "duration", d, "err", err)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Debug("handler error", "method", method, "path", path, "err", err)
}
