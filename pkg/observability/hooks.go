// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional: libraries emit events through the registered
// hooks, which default to no-ops. The binary registers real implementations
// at startup, so library packages never depend on a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetImposeHooks(&myImposeHooks{})
//	    observability.SetHTTPHooks(observability.NewLogHTTPHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Impose().OnImposeStart(ctx, name, cells)
//	// ... solve and place ...
//	observability.Impose().OnImposeComplete(ctx, name, cells, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Impose Hooks
// =============================================================================

// ImposeHooks receives events from the layout pipeline.
type ImposeHooks interface {
	// Load events: parsing and validating a layout document
	OnLoadStart(ctx context.Context, format string)
	OnLoadComplete(ctx context.Context, format string, cells int, duration time.Duration, err error)

	// Impose events: building the program, solving and placing cells
	OnImposeStart(ctx context.Context, name string, cells int)
	OnImposeComplete(ctx context.Context, name string, cells int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, requestID, method, path string)

	// OnResponse records a completed request.
	OnResponse(ctx context.Context, requestID, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopImposeHooks is a no-op implementation of ImposeHooks.
type NoopImposeHooks struct{}

func (NoopImposeHooks) OnLoadStart(context.Context, string)                                  {}
func (NoopImposeHooks) OnLoadComplete(context.Context, string, int, time.Duration, error)    {}
func (NoopImposeHooks) OnImposeStart(context.Context, string, int)                           {}
func (NoopImposeHooks) OnImposeComplete(context.Context, string, int, time.Duration, error)  {}
func (NoopImposeHooks) OnRenderStart(context.Context, []string)                              {}
func (NoopImposeHooks) OnRenderComplete(context.Context, []string, time.Duration, error)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	imposeHooks ImposeHooks = NoopImposeHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetImposeHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetImposeHooks(h ImposeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		imposeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Impose returns the registered pipeline hooks.
func Impose() ImposeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return imposeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	imposeHooks = NoopImposeHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
